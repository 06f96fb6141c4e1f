package repl

// note: based off of csci1270-fall23
import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// ErrQuit may be returned by a handler to end the loop.
var ErrQuit = errors.New("quit")

type REPL struct {
	Commands map[string]func(string, *REPLConfig) error
	Help     map[string]string
	Prompt   string
}

type REPLConfig struct {
	Writer io.Writer
}

func NewRepl() *REPL {
	r := &REPL{make(map[string]func(string, *REPLConfig) error), make(map[string]string), "> "}
	return r
}

// Add a command, along with its help string, to the set of commands
func (r *REPL) AddCommand(trigger string, handler func(string, *REPLConfig) error, help string) {
	if trigger == "" || trigger[0] == '.' {
		return
	}
	r.Help[trigger] = help
	r.Commands[trigger] = handler
}

// Return all REPL usage information as a string
func (r *REPL) HelpString() string {
	triggers := make([]string, 0, len(r.Help))
	for k := range r.Help {
		triggers = append(triggers, k)
	}
	sort.Strings(triggers)

	var sb strings.Builder
	sb.WriteString("Commands\n")
	for _, k := range triggers {
		sb.WriteString(fmt.Sprintf("\t%s: %s\n", k, r.Help[k]))
	}
	return sb.String()
}

// Execute runs a single line of input. It returns ErrQuit when the loop
// should stop.
func (r *REPL) Execute(input string, config *REPLConfig) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	command := strings.Fields(input)[0]
	switch command {
	case "help":
		io.WriteString(config.Writer, r.HelpString())
		return nil
	case "exit", "quit":
		return ErrQuit
	}

	handler, ok := r.Commands[command]
	if !ok {
		io.WriteString(config.Writer, fmt.Sprintf("Invalid command: %s\n", command))
		io.WriteString(config.Writer, r.HelpString())
		return nil
	}
	err := handler(input, config)
	if errors.Is(err, ErrQuit) {
		return ErrQuit
	}
	if err != nil {
		io.WriteString(config.Writer, fmt.Sprintf("Error: %v\n", err))
	}
	return nil
}

// Run reads commands from the terminal until EOF, interrupt or quit.
func (r *REPL) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.Prompt,
		AutoComplete:    r.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return errors.Wrap(err, "starting readline")
	}
	defer rl.Close()

	replConfig := &REPLConfig{Writer: rl.Stdout()}
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r.Execute(line, replConfig) == ErrQuit {
			return nil
		}
	}
}

// RunScript executes every line of reader, echoing the prompt to writer.
func (r *REPL) RunScript(reader io.Reader, writer io.Writer) error {
	scanner := bufio.NewScanner(reader)
	replConfig := &REPLConfig{Writer: writer}

	io.WriteString(writer, r.Prompt)
	for scanner.Scan() {
		if r.Execute(scanner.Text(), replConfig) == ErrQuit {
			return nil
		}
		io.WriteString(writer, r.Prompt)
	}
	return scanner.Err()
}

func (r *REPL) completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(r.Commands)+2)
	for _, trigger := range []string{"help", "exit"} {
		items = append(items, readline.PcItem(trigger))
	}
	for trigger := range r.Commands {
		items = append(items, readline.PcItem(trigger))
	}
	return readline.NewPrefixCompleter(items...)
}
