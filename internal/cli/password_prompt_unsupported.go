//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import "os"

// readPasswordNoEcho cannot hide input here, so the line is read with echo on.
func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	if stdin == nil {
		return nil, errNoStdin
	}
	return readLine(stdin)
}
