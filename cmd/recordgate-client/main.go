// ABOUTME: Entry point for the recordgate command-line client
// ABOUTME: Authenticates with an API key and queries records over HTTP

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2389/recordgate/internal/client"
)

// Exit codes.
const (
	exitFailure      = 1
	exitUnauthorized = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return exitUnauthorized
	}
	return exitFailure
}
