package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAuthCommand creates the auth command.
func NewAuthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Exchange the API key for a session token",
		Long: `Exchange the API key for a session token valid for one hour.

Example:
  export RECORDGATE_TOKEN=$(recordgate-client auth --api-key abc)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := rootOpts.client().Authenticate(cmd.Context())
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
