package commands

import (
	"codedx-client/internal/version"
	"fmt"

	"github.com/spf13/cobra"
)

// NewExitCmd creates the exit command.
func NewExitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "exit",
		Aliases:     []string{"quit"},
		Short:       "Exit the REPL",
		Args:        noArgs,
		Annotations: map[string]string{annotationSkipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.noPrompt(cmd) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), "goodbye"); err != nil {
					return err
				}
			}
			return &ExitRequest{Code: ExitOK}
		},
	}
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        noArgs,
		Annotations: map[string]string{annotationSkipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return version.Get().Write(cmd.OutOrStdout(), short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only the version number")
	return cmd
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &UsageError{Msg: fmt.Sprintf("unexpected argument %q", args[0])}
	}
	return nil
}

// noPrompt reports whether prompts are off. Commands that skip setup only see
// the flag.
func (a *App) noPrompt(cmd *cobra.Command) bool {
	if a.cfg != nil {
		return a.cfg.NoPrompt
	}
	noPrompt, err := cmd.Flags().GetBool(flagNoPrompt)
	return err == nil && noPrompt
}
