package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errNoStdin = errors.New("stdin unavailable")

// readLine returns one line from r without its line ending. A final line
// without a newline is accepted.
func readLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
