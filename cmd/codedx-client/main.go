// Package main provides the entry point for the Code Dx command line client.
//
// Usage:
//
//	codedx-client -b https://localhost/codedx -k <api-key> projects
//	codedx-client -b https://localhost/codedx -u admin branches -p 3
//	codedx-client -b https://localhost/codedx -k <api-key> analyze "3;branch=main" src.zip
//	codedx-client -b https://localhost/codedx -k <api-key>
//
// Without a command the client starts a REPL that reuses the connection settings.
package main

import (
	"codedx-client/internal/client/commands"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.NewRootCmd().ExecuteContext(ctx)
	stop()

	os.Exit(commands.Report(os.Stderr, err))
}
