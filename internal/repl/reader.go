// Package repl runs the interactive prompt loop of the client.
package repl

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// HistoryFileName is the name of the REPL history file in the home directory.
const HistoryFileName = ".codedx-client_history"

// LineReader reads one line of input after showing prompt. It returns io.EOF
// when the input is exhausted.
type LineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// NewLineReader returns a line-editing reader with history when in is an
// interactive terminal and prompts are enabled, and a plain reader otherwise.
func NewLineReader(in io.Reader, out io.Writer, noPrompt bool) LineReader {
	if f, ok := in.(*os.File); ok && !noPrompt && f == os.Stdin && term.IsTerminal(int(f.Fd())) {
		return newTerminalReader(historyPath())
	}
	return NewPlainReader(in, out)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), HistoryFileName)
	}
	return filepath.Join(home, HistoryFileName)
}

type terminalReader struct {
	line        *liner.State
	historyFile string
}

func newTerminalReader(historyFile string) *terminalReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	return &terminalReader{line: line, historyFile: historyFile}
}

func (r *terminalReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *terminalReader) Close() error {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
		_, _ = r.line.WriteHistory(f)
		_ = f.Close()
	}
	return r.line.Close()
}

// PlainReader reads lines from any reader and writes prompts to out.
type PlainReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPlainReader creates a PlainReader.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{scanner: bufio.NewScanner(in), out: out}
}

// Prompt writes prompt and returns the next line without its line ending.
func (r *PlainReader) Prompt(prompt string) (string, error) {
	if prompt != "" {
		if _, err := io.WriteString(r.out, prompt); err != nil {
			return "", err
		}
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(r.scanner.Text(), "\r"), nil
}

// Close is a no-op.
func (r *PlainReader) Close() error {
	return nil
}
