package rbshell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ringbuf-nora-yu/pkg/backlog"
	"ringbuf-nora-yu/pkg/repl"
	"ringbuf-nora-yu/pkg/ringbuf"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Shell drives a ring buffer from REPL commands. Backlog is optional; when
// set, rejected writes are queued and replayed after every read.
type Shell struct {
	rb      *ringbuf.RingBuffer
	backlog *backlog.Backlog
	logger  *zap.SugaredLogger
}

func New(rb *ringbuf.RingBuffer, bl *backlog.Backlog, logger *zap.SugaredLogger) *Shell {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Shell{rb: rb, backlog: bl, logger: logger}
}

func (s *Shell) Repl() *repl.REPL {
	r := repl.NewRepl()
	r.AddCommand("write", s.writeHandler(), "Writes the text into the buffer. usage: write <text>")
	r.AddCommand("read", s.readHandler(), "Reads up to n bytes from the buffer. usage: read <n>")
	r.AddCommand("peek", s.peekHandler(), "Prints the readable bytes without consuming them. usage: peek")
	r.AddCommand("discard", s.discardHandler(), "Drops up to n readable bytes. usage: discard <n>")
	r.AddCommand("stat", s.statHandler(), "Prints capacity, readable and writable bytes. usage: stat")
	r.AddCommand("reset", s.resetHandler(), "Empties the buffer. usage: reset")
	if s.backlog != nil {
		r.AddCommand("flush", s.flushHandler(), "Retries the queued writes. usage: flush")
		r.AddCommand("backlog", s.backlogHandler(), "Prints the queued writes. usage: backlog")
	}
	return r
}

func (s *Shell) writeHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		// the text after the separating blanks is written as is
		_, text, _ := strings.Cut(input, " ")
		text = strings.TrimLeft(text, " \t")
		if text == "" {
			return fmt.Errorf("usage: write <text>")
		}
		data := []byte(text)

		if s.backlog != nil {
			n, err := s.backlog.Write(data)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(config.Writer, "queued %d bytes, %d pending\n", len(data), s.backlog.Pending())
				return nil
			}
			fmt.Fprintf(config.Writer, "wrote %d bytes\n", n)
			return nil
		}

		n, err := s.rb.Write(data)
		if err != nil {
			s.logger.Debugw("write rejected", "bytes", len(data), "writable", s.rb.Writable())
			return err
		}
		fmt.Fprintf(config.Writer, "wrote %d bytes\n", n)
		return nil
	}
}

func (s *Shell) readHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 2 {
			return fmt.Errorf("usage: read <n>")
		}
		count, err := parseCount(args[1])
		if err != nil {
			return err
		}

		buf := make([]byte, min(count, s.rb.Readable()))
		n, err := s.rb.Read(buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(config.Writer, "read %d bytes: %q\n", n, buf[:n])

		if s.backlog != nil && n > 0 {
			if _, err := s.backlog.Flush(); err != nil {
				s.logger.Warnw("backlog flush failed", "error", err)
			}
		}
		return nil
	}
}

func (s *Shell) peekHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		if len(strings.Fields(input)) != 1 {
			return fmt.Errorf("usage: peek")
		}
		_, err := fmt.Fprintf(config.Writer, "%q\n", s.rb.Bytes())
		return err
	}
}

func (s *Shell) discardHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 2 {
			return fmt.Errorf("usage: discard <n>")
		}
		count, err := parseCount(args[1])
		if err != nil {
			return err
		}
		n, err := s.rb.Discard(count)
		if err != nil {
			return err
		}
		fmt.Fprintf(config.Writer, "discarded %d bytes\n", n)
		return nil
	}
}

func (s *Shell) statHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		if len(strings.Fields(input)) != 1 {
			return fmt.Errorf("usage: stat")
		}
		_, err := io.WriteString(config.Writer, "Capacity\tReadable\tWritable\n")
		if err != nil {
			return fmt.Errorf("statHandler cannot write the header")
		}
		_, err = fmt.Fprintf(config.Writer, "%s\t\t%d\t\t%d\n",
			humanize.IBytes(uint64(s.rb.Capacity())), s.rb.Readable(), s.rb.Writable())
		return err
	}
}

func (s *Shell) resetHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		s.rb.Reset()
		if s.backlog != nil {
			s.backlog.Drop()
		}
		_, err := io.WriteString(config.Writer, "buffer reset\n")
		return err
	}
}

func (s *Shell) flushHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		n, err := s.backlog.Flush()
		if err != nil {
			return err
		}
		fmt.Fprintf(config.Writer, "flushed %d bytes, %d pending\n", n, s.backlog.Pending())
		return nil
	}
}

func (s *Shell) backlogHandler() func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		_, err := fmt.Fprintf(config.Writer, "%d chunks, %d bytes pending\n", s.backlog.Len(), s.backlog.Pending())
		return err
	}
}

func parseCount(s string) (int, error) {
	count, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid byte count %q", s)
	}
	if count < 0 {
		return 0, errors.Errorf("byte count must not be negative, got %d", count)
	}
	return count, nil
}
