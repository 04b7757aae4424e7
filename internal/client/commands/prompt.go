package commands

import (
	"codedx-client/internal/config"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// terminalPasswordPrompt reads the password without echo. It returns nil when in
// is not a terminal, so a missing password is reported as missing auth.
func terminalPasswordPrompt(in io.Reader, out io.Writer) config.PasswordPrompt {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}

	return func(prompt string) (string, error) {
		if _, err := io.WriteString(out, prompt); err != nil {
			return "", err
		}
		password, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}
}
