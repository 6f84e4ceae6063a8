package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Token string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <field=value>...",
		Short: "Query records matching every field",
		Long: `Query records whose fields equal every given value.

Without --token (or RECORDGATE_TOKEN) the command authenticates with the
API key first and uses the fresh token for this query only.

Example:
  recordgate-client query --api-key abc type=x region=eu`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Token, "token", "t", os.Getenv("RECORDGATE_TOKEN"), "session token from 'auth'")

	return cmd
}

// parseFilterArgs turns field=value arguments into a filter. The value may
// be empty or contain further '=' characters.
func parseFilterArgs(args []string) (map[string]string, error) {
	filter := make(map[string]string, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: want field=value", arg)
		}
		if _, dup := filter[field]; dup {
			return nil, fmt.Errorf("field %q given more than once", field)
		}
		filter[field] = value
	}
	return filter, nil
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, args []string) error {
	filter, err := parseFilterArgs(args)
	if err != nil {
		return err
	}

	c := opts.client()
	token := opts.Token
	if token == "" {
		token, err = c.Authenticate(cmd.Context())
		if err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}

	if opts.Format == "json" {
		raw, err := c.Query(cmd.Context(), token, filter)
		if err != nil {
			return err
		}
		return writeIndented(cmd.OutOrStdout(), raw)
	}

	recs, err := c.QueryRecords(cmd.Context(), token, filter)
	if err != nil {
		return err
	}
	writeRecords(cmd.OutOrStdout(), recs)
	return nil
}

func writeIndented(w io.Writer, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRecords prints one line per record with fields in sorted order.
func writeRecords(w io.Writer, recs []map[string]any) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no matching records")
		return
	}
	for _, rec := range recs {
		fields := make([]string, 0, len(rec))
		for k := range rec {
			fields = append(fields, k)
		}
		sort.Strings(fields)

		parts := make([]string, 0, len(fields))
		for _, k := range fields {
			parts = append(parts, k+"="+formatValue(rec[k]))
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
