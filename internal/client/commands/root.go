// Package commands provides the cobra command tree of the Code Dx client.
// The same commands serve one-shot invocations and the REPL.
package commands

import (
	"codedx-client/internal/application/common/slogger"
	"codedx-client/internal/client"
	"codedx-client/internal/config"
	"codedx-client/internal/repl"
	"codedx-client/internal/version"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names for persistent global flags.
const (
	flagBaseURL   = "base-url"
	flagUsername  = "username"
	flagPassword  = "password"
	flagAPIKey    = "api-key"
	flagInsecure  = "insecure"
	flagNoPrompt  = "no-prompt"
	flagTimeout   = "timeout"
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagOutput    = "output"
)

// annotationSkipSetup marks commands that run without a configured client.
const annotationSkipSetup = "codedx/skip-setup"

// flagKeys binds global flags to configuration keys.
var flagKeys = map[string]string{
	flagBaseURL:   config.KeyBaseURL,
	flagUsername:  config.KeyUsername,
	flagPassword:  config.KeyPassword,
	flagAPIKey:    config.KeyAPIKey,
	flagInsecure:  config.KeyInsecure,
	flagNoPrompt:  config.KeyNoPrompt,
	flagTimeout:   config.KeyTimeout,
	flagLogLevel:  config.KeyLogLevel,
	flagLogFormat: config.KeyLogFormat,
	flagOutput:    config.KeyOutput,
}

// App is the state shared by every command of one process: the loaded
// configuration and the API client built from it.
type App struct {
	cfg    *config.Config
	client *client.Client
	format client.Format

	cfgFile        string
	passwordPrompt func(in io.Reader, out io.Writer) config.PasswordPrompt
	clientOpts     []client.Option
	lineReader     func(in io.Reader, out io.Writer, noPrompt bool) repl.LineReader
}

// Option customizes NewRootCmd.
type Option func(*App)

// WithPasswordPrompt replaces the terminal password prompt.
func WithPasswordPrompt(prompt config.PasswordPrompt) Option {
	return func(a *App) {
		a.passwordPrompt = func(io.Reader, io.Writer) config.PasswordPrompt { return prompt }
	}
}

// WithClientOptions passes options to the API client.
func WithClientOptions(opts ...client.Option) Option {
	return func(a *App) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// WithLineReader replaces the REPL input source.
func WithLineReader(newReader func(in io.Reader, out io.Writer, noPrompt bool) repl.LineReader) Option {
	return func(a *App) {
		a.lineReader = newReader
	}
}

// NewRootCmd creates the root command. Without a subcommand it starts the REPL.
//
// Subcommands:
//   - analyze: Upload files and run an analysis
//   - projects: List or filter projects
//   - branches: List the branches of a project
//   - exit: Leave the REPL
//   - version: Print build information
func NewRootCmd(opts ...Option) *cobra.Command {
	app := &App{
		passwordPrompt: terminalPasswordPrompt,
		lineReader:     repl.NewLineReader,
	}
	for _, opt := range opts {
		opt(app)
	}

	cmd := &cobra.Command{
		Use:           "codedx-client",
		Short:         "Command line client for the Code Dx REST API",
		Long:          "Runs one command against a Code Dx server, or starts a REPL when no command is given.",
		Version:       version.Get().Version,
		Args:          rejectUnknownCommand,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationSkipSetup] != "" || cmd.Name() == "help" {
				return nil
			}
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runREPL(cmd)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(flagError)

	flags := cmd.PersistentFlags()
	flags.StringP(flagBaseURL, "b", "", "Code Dx base URL, e.g. https://localhost/codedx")
	flags.StringP(flagUsername, "u", "", "Username for basic authentication")
	flags.String(flagPassword, "", "Password for basic authentication (prompted when omitted)")
	flags.StringP(flagAPIKey, "k", "", "API key, used instead of username and password")
	flags.Bool(flagInsecure, false, "Skip all TLS certificate checks, including the hostname (unsafe)")
	flags.Bool(flagNoPrompt, false, "Do not print REPL prompts and banners")
	flags.Duration(flagTimeout, config.DefaultTimeout, "Per-request timeout")
	flags.StringVar(&app.cfgFile, flagConfig, "", "Config file (default: ./codedx-client.yaml or ~/codedx-client.yaml)")
	flags.String(flagLogLevel, config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String(flagLogFormat, config.DefaultLogFormat, "Log format (json, text)")
	flags.StringP(flagOutput, "o", config.DefaultOutput, "Listing output format (json, yaml)")

	addSubcommands(cmd, app)
	return cmd
}

func addSubcommands(cmd *cobra.Command, app *App) {
	cmd.AddCommand(NewAnalyzeCmd(app))
	cmd.AddCommand(NewProjectsCmd(app))
	cmd.AddCommand(NewBranchesCmd(app))
	cmd.AddCommand(NewExitCmd(app))
	cmd.AddCommand(NewVersionCmd())
}

func rejectUnknownCommand(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &UnknownCommandError{Name: args[0]}
	}
	return nil
}

func flagError(_ *cobra.Command, err error) error {
	return &UsageError{Msg: err.Error()}
}

// setup loads the configuration once and builds the API client.
func (a *App) setup(cmd *cobra.Command) error {
	if a.client != nil {
		return nil
	}

	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := slogger.Configure(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	format, err := client.ParseFormat(cfg.Output)
	if err != nil {
		return &UsageError{Msg: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	creds, err := cfg.ResolveAuth(a.passwordPrompt(cmd.InOrStdin(), cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	c, err := client.NewClient(client.Config{
		BaseURL:  cfg.BaseURL,
		APIKey:   creds.APIKey,
		Username: creds.Username,
		Password: creds.Password,
		Insecure: cfg.Insecure,
		Timeout:  cfg.Timeout,
	}, a.clientOpts...)
	if err != nil {
		return err
	}

	slogger.Debug(cmd.Context(), "Client configured", slogger.Fields3(
		"base_url", cfg.BaseURL,
		"api_key_auth", creds.IsAPIKey(),
		"output", string(format),
	))

	a.cfg = cfg
	a.format = format
	a.client = c
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// runREPL reads lines and executes each one against a fresh command tree that
// shares this App.
func (a *App) runREPL(cmd *cobra.Command) error {
	reader := a.lineReader(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.NoPrompt)
	defer func() { _ = reader.Close() }()

	code, err := repl.Run(cmd.Context(), repl.Options{
		Reader:   reader,
		Out:      cmd.OutOrStdout(),
		ErrOut:   cmd.ErrOrStderr(),
		NoPrompt: a.cfg.NoPrompt,
		Handle: func(ctx context.Context, args []string) (bool, int) {
			line := a.newREPLCmd()
			line.SetArgs(args)
			line.SetIn(cmd.InOrStdin())
			line.SetOut(cmd.OutOrStdout())
			line.SetErr(cmd.ErrOrStderr())
			return reportInREPL(cmd.ErrOrStderr(), line.ExecuteContext(ctx))
		},
	})
	if err != nil {
		return err
	}
	if code != ExitOK {
		return &ExitRequest{Code: code}
	}
	return nil
}

// newREPLCmd builds the command tree for one REPL line. It has no global flags;
// connection settings come from the App.
func (a *App) newREPLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "",
		Args:          rejectUnknownCommand,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          func(*cobra.Command, []string) error { return nil },
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(flagError)
	addSubcommands(cmd, a)
	return cmd
}
