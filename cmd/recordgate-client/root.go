package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389/recordgate/internal/client"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server string
	APIKey string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// NewRootCommand creates the root command for the recordgate client.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recordgate-client",
		Short: "Query a recordgate server",
		Long: `Exchange an API key for a session token and query records.

The server address and API key default to RECORDGATE_SERVER and
RECORDGATE_API_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", envOr("RECORDGATE_SERVER", "http://localhost:3010"), "server base URL")
	cmd.PersistentFlags().StringVarP(&opts.APIKey, "api-key", "k", os.Getenv("RECORDGATE_API_KEY"), "API key")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewAuthCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

func (o *RootOptions) client() *client.Client {
	return client.New(o.Server, o.APIKey)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
