package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLineTrimsLineEndings(t *testing.T) {
	t.Parallel()

	line, err := readLine(strings.NewReader("Sup3rSecret\r\nnext line\n"))
	require.NoError(t, err)
	assert.Equal(t, "Sup3rSecret", string(line))

	line, err = readLine(strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", string(line))
}

func TestPromptPasswordReadsPipedInput(t *testing.T) {
	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = reader.Close() })

	_, err = writer.WriteString("  Sup3rSecret  \n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	var out bytes.Buffer
	password, err := PromptPassword(reader, &out)
	require.NoError(t, err)
	assert.Equal(t, "Sup3rSecret", password)
	assert.Contains(t, out.String(), "Password")
}

func TestPromptPasswordWithoutStdin(t *testing.T) {
	t.Parallel()

	_, err := PromptPassword(nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, errNoStdin)
}
