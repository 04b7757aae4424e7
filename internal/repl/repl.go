package repl

import (
	"codedx-client/internal/application/common/slogger"
	"codedx-client/internal/shell"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt is shown before every line unless prompts are disabled.
const Prompt = "codedx> "

// Banner is printed once when the REPL starts with prompts enabled.
var Banner = []string{
	"Welcome to the Code Dx CLI Client REPL.",
	"In the REPL, you can enter commands without having to provide the Code Dx base url or credentials each time.",
	"If this wasn't what you expected, make sure to include a command when running this program from the command line.",
	"For a list of commands, type 'help'. To exit, type 'exit'",
	"",
}

// Handler executes one tokenized line. Returning stop ends the loop with code.
type Handler func(ctx context.Context, args []string) (stop bool, code int)

// Options configure a REPL session.
type Options struct {
	Reader   LineReader
	Out      io.Writer
	ErrOut   io.Writer
	NoPrompt bool
	Handle   Handler
}

// Run prints the banner and executes lines until EOF, a stop from the handler or
// a cancelled ctx. The returned code is the handler's on stop and 0 otherwise.
func Run(ctx context.Context, opts Options) (int, error) {
	prompt := Prompt
	if opts.NoPrompt {
		prompt = ""
	} else {
		for _, line := range Banner {
			if _, err := fmt.Fprintln(opts.Out, line); err != nil {
				return 0, err
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, nil
		}

		input, err := opts.Reader.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, nil
			}
			return 0, fmt.Errorf("failed to read input: %w", err)
		}

		line := strings.TrimSpace(input)
		if line == "" {
			continue
		}

		args, err := shell.Tokenize(line)
		if err != nil {
			slogger.Debug(ctx, "Discarding unparsable input line", slogger.Field("error", err.Error()))
			_, _ = fmt.Fprintf(opts.ErrOut, "Could not parse input: %v\n", err)
			continue
		}

		if stop, code := opts.Handle(ctx, args); stop {
			return code, nil
		}
	}
}
