package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptToken reads the token without echo. It refuses when stdin is not a
// terminal so scripts fail fast instead of hanging.
func promptToken(in *os.File, w io.Writer) (string, error) {
	if in == nil || !isTerminal(int(in.Fd())) {
		return "", errNoToken
	}
	if _, err := fmt.Fprint(w, "Access token: "); err != nil {
		return "", err
	}
	b, err := readPassword(int(in.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", errNoToken
	}
	return tok, nil
}
