package commands

import (
	"codedx-client/internal/config"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitUnknownCommand   = -1
	ExitInvalidArguments = -2
)

// UsageError reports arguments a command cannot work with.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// UnknownCommandError is returned when the first argument names no command.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// ExitRequest ends the program (or the REPL) with Code.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit requested with code %d", e.Code)
}

// OperationError is a failed API operation. Message is what the user sees.
type OperationError struct {
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func operationError(message string, err error) *OperationError {
	return &OperationError{Message: message, Err: err}
}

// ExitCode maps an Execute result to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		exit    *ExitRequest
		usage   *UsageError
		unknown *UnknownCommandError
	)
	switch {
	case errors.As(err, &exit):
		return exit.Code
	case errors.As(err, &usage):
		return ExitInvalidArguments
	case errors.As(err, &unknown):
		return ExitUnknownCommand
	default:
		return ExitFailure
	}
}

// Report prints err the way a one-shot invocation shows it and returns the exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		exit    *ExitRequest
		usage   *UsageError
		unknown *UnknownCommandError
		cfgErr  *config.ConfigError
	)
	switch {
	case errors.As(err, &exit):
	case errors.As(err, &usage):
		_, _ = fmt.Fprintf(w, "Invalid arguments for command: %s\n", usage.Msg)
	case errors.As(err, &unknown):
		_, _ = fmt.Fprintln(w, "Unknown command.")
	case errors.As(err, &cfgErr):
		_, _ = fmt.Fprintln(w, cfgErr.Error())
	default:
		_, _ = fmt.Fprintln(w, err.Error())
	}
	return ExitCode(err)
}

// reportInREPL prints err the way the REPL shows it. It returns true when the
// loop should end.
func reportInREPL(w io.Writer, err error) (stop bool, code int) {
	var (
		exit    *ExitRequest
		usage   *UsageError
		unknown *UnknownCommandError
	)
	switch {
	case err == nil:
	case errors.As(err, &exit):
		return true, exit.Code
	case errors.As(err, &usage):
		_, _ = fmt.Fprintf(w, "Invalid arguments for command: %s\nTry again.\n", usage.Msg)
	case errors.As(err, &unknown):
		_, _ = fmt.Fprintln(w, "Unknown command; try again.")
	default:
		_, _ = fmt.Fprintln(w, err.Error())
	}
	return false, ExitOK
}
