package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type collector struct {
	lines []string
}

func (c *collector) Write(p []byte) (int, error) {
	c.lines = append(c.lines, string(p))
	return len(p), nil
}

func TestWrapperMessage(t *testing.T) {
	c := &collector{}
	w := NewWrapper(c)

	n, err := w.Write([]byte(`{"time":"now","message":"a\nb"}`))
	require.NoError(t, err)
	require.Equal(t, 31, n)
	require.Equal(t, []string{"a", "b"}, c.lines)
}

func TestWrapperPassThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWrapper(buf)

	w.Write([]byte("plain text"))
	require.Equal(t, "plain text", buf.String())
}
