package rbconfig

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultCapacity = 4096
	DefaultPrompt   = "> "
)

/*
 * Config mirrors the directives of a .rb file:
 *
 *   # comment
 *   capacity 8
 *   backlog 64
 *   prompt rb>
 *
 * Directives may appear in any order; a later one overrides an earlier one.
 */
type Config struct {
	Capacity int

	// Bytes a backlog may hold for rejected writes, 0 disables it
	Backlog int

	Prompt string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Capacity: DefaultCapacity,
		Prompt:   DefaultPrompt,
	}
}

type ParseFunc func(int, []string, *Config) error

var parseCommands = map[string]ParseFunc{
	"capacity": parseCapacity,
	"backlog":  parseBacklog,
	"prompt":   parsePrompt,
}

func parseCapacity(ln int, tokens []string, config *Config) error {
	if len(tokens) != 2 {
		return newErrString(ln, "capacity directive must have format:  capacity <bytes>")
	}
	capacity, err := parseSize(tokens[1])
	if err != nil {
		return newErr(ln, err)
	}
	if capacity < 1 {
		return newErrString(ln, "capacity must be positive, got %d", capacity)
	}
	config.Capacity = capacity
	return nil
}

func parseBacklog(ln int, tokens []string, config *Config) error {
	if len(tokens) != 2 {
		return newErrString(ln, "backlog directive must have format:  backlog <bytes>")
	}
	limit, err := parseSize(tokens[1])
	if err != nil {
		return newErr(ln, err)
	}
	if limit < 0 {
		return newErrString(ln, "backlog must not be negative, got %d", limit)
	}
	config.Backlog = limit
	return nil
}

func parsePrompt(ln int, tokens []string, config *Config) error {
	if len(tokens) < 2 {
		return newErrString(ln, "prompt directive must have format:  prompt <text>")
	}
	config.Prompt = strings.Join(tokens[1:], " ") + " "
	return nil
}

// parseSize accepts a plain byte count or one with a k/m suffix (1024 based).
func parseSize(s string) (int, error) {
	mult := 1
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult = 1 << 10
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		mult = 1 << 20
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size %q", s)
	}
	if n > math.MaxInt/mult || n < math.MinInt/mult {
		return 0, errors.Errorf("invalid size %q: overflows int", s)
	}
	return n * mult, nil
}

func newErrString(line int, msg string, args ...any) error {
	_msg := fmt.Sprintf(msg, args...)
	return errors.Errorf("Parse error on line %d:  %s", line, _msg)
}

func newErr(line int, err error) error {
	return errors.Wrapf(err, "Parse error on line %d", line)
}

// Parse reads directives from r on top of the defaults.
func Parse(r io.Reader) (*Config, error) {
	config := Default()

	scanner := bufio.NewScanner(r)
	ln := 0
	for scanner.Scan() {
		ln++

		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}

		// Skip comments
		head := tokens[0]
		if head[0] == '#' {
			continue
		}

		pf, found := parseCommands[head]
		if !found {
			return nil, newErrString(ln, "Unrecognized token %s", head)
		}
		if err := pf(ln, tokens, config); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	return config, nil
}

// Parse a configuration file
func ParseConfig(configFile string) (*Config, error) {
	fd, err := os.Open(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open file %s", configFile)
	}
	defer fd.Close()

	return Parse(fd)
}
