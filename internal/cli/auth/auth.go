package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Register, login, and manage the saved session",
}

// prompter reads answers from one buffered input so piped stdin works
type prompter struct {
	in  io.Reader
	buf *bufio.Reader
	out io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, buf: bufio.NewReader(in), out: cmd.OutOrStdout()}
}

// line asks for label unless value is already set
func (p *prompter) line(label, value string) string {
	if value != "" {
		return value
	}
	fmt.Fprintf(p.out, "%s: ", label)
	s, _ := p.buf.ReadString('\n')
	return strings.TrimSpace(s)
}

// password hides input on a terminal
func (p *prompter) password() (string, error) {
	fmt.Fprint(p.out, "Password: ")
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}
	s, err := p.buf.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}
