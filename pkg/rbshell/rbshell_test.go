package rbshell

import (
	"bytes"
	"strings"
	"testing"

	"ringbuf-nora-yu/pkg/backlog"
	"ringbuf-nora-yu/pkg/ringbuf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func run(t *testing.T, s *Shell, script ...string) string {
	t.Helper()
	r := s.Repl()
	r.Prompt = ""

	var out bytes.Buffer
	require.NoError(t, r.RunScript(strings.NewReader(strings.Join(script, "\n")), &out))
	return out.String()
}

func TestShell(t *testing.T) {
	rb, err := ringbuf.New(8)
	require.NoError(t, err)
	s := New(rb, nil, zaptest.NewLogger(t).Sugar())

	out := run(t, s,
		"write hello",
		"write abc",
		"stat",
		"read 2",
		"peek",
		"discard 1",
		"read 10",
		"read 1",
	)
	assert.Equal(t, strings.Join([]string{
		"wrote 5 bytes",
		"Error: write of 3 bytes, 3 writable: ringbuf: insufficient space",
		"Capacity\tReadable\tWritable",
		"8 B\t\t5\t\t3",
		`read 2 bytes: "he"`,
		`"llo"`,
		"discarded 1 bytes",
		`read 2 bytes: "lo"`,
		`read 0 bytes: ""`,
		"",
	}, "\n"), out)
}

func TestShellUsageErrors(t *testing.T) {
	rb, err := ringbuf.New(8)
	require.NoError(t, err)
	s := New(rb, nil, nil)

	out := run(t, s, "write", "read", "read x", "read -1", "discard", "stat now", "peek all")
	assert.Equal(t, strings.Join([]string{
		"Error: usage: write <text>",
		"Error: usage: read <n>",
		`Error: invalid byte count "x": strconv.Atoi: parsing "x": invalid syntax`,
		"Error: byte count must not be negative, got -1",
		"Error: usage: discard <n>",
		"Error: usage: stat",
		"Error: usage: peek",
		"",
	}, "\n"), out)
}

func TestShellBacklog(t *testing.T) {
	rb, err := ringbuf.New(8)
	require.NoError(t, err)
	bl := backlog.New(rb, 16, zaptest.NewLogger(t).Sugar())
	s := New(rb, bl, zaptest.NewLogger(t).Sugar())

	out := run(t, s,
		"write abcde",
		"write fgh",
		"backlog",
		"flush",
		"read 5",
		"backlog",
		"peek",
		"reset",
		"stat",
	)
	assert.Equal(t, strings.Join([]string{
		"wrote 5 bytes",
		"queued 3 bytes, 3 pending",
		"1 chunks, 3 bytes pending",
		"flushed 0 bytes, 3 pending",
		`read 5 bytes: "abcde"`,
		"0 chunks, 0 bytes pending",
		`"fgh"`,
		"buffer reset",
		"Capacity\tReadable\tWritable",
		"8 B\t\t0\t\t8",
		"",
	}, "\n"), out)
}

func TestShellWithoutBacklogHasNoFlush(t *testing.T) {
	rb, err := ringbuf.New(8)
	require.NoError(t, err)
	r := New(rb, nil, nil).Repl()

	assert.NotContains(t, r.Commands, "flush")
	assert.NotContains(t, r.Commands, "backlog")
	assert.Contains(t, r.Commands, "write")
}

func TestShellReadHugeCount(t *testing.T) {
	rb, err := ringbuf.New(8)
	require.NoError(t, err)
	s := New(rb, nil, nil)

	out := run(t, s,
		"read 9223372036854775807",
		"write abc",
		"read 9223372036854775807",
	)
	assert.Equal(t, strings.Join([]string{
		`read 0 bytes: ""`,
		"wrote 3 bytes",
		`read 3 bytes: "abc"`,
		"",
	}, "\n"), out)
}

func TestShellWriteSkipsSeparatorBlanks(t *testing.T) {
	rb, err := ringbuf.New(16)
	require.NoError(t, err)
	s := New(rb, nil, nil)

	out := run(t, s, "write   a  b", "write \t ", "peek")
	assert.Equal(t, strings.Join([]string{
		"wrote 4 bytes",
		"Error: usage: write <text>",
		`"a  b"`,
		"",
	}, "\n"), out)
}
