package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/amankumarsingh77/seo_audit/internal/analytics"
	"github.com/amankumarsingh77/seo_audit/internal/secrets"
	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the search API credentials kept in the secret vault",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <json | @file>",
	Short: "Store the credentials JSON object, replacing any previous value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := readSecret(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		vault, err := secrets.NewAWSVault(ctx, &cfg.Secrets, logger.Named("secrets"))
		if err != nil {
			return fmt.Errorf("secrets manager unavailable: %w", err)
		}
		creds := analytics.NewCredentials(vault, cfg.Secrets.AnalyticsSecret, logger)
		if !creds.Save(ctx, value) {
			return errors.New("credentials were not saved, see the log for the vault error")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %d keys\n", len(value))
		return nil
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the credential keys present in the vault",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		creds := analytics.NewCredentials(newVault(ctx, cfg, logger), cfg.Secrets.AnalyticsSecret, logger)
		value := creds.Load(ctx)
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

// readSecret parses arg as a JSON object, or reads it from a file when arg
// starts with '@'.
func readSecret(arg string) (map[string]any, error) {
	raw := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		raw = b
	}
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("credentials must be a JSON object: %w", err)
	}
	if len(value) == 0 {
		return nil, errors.New("credentials object is empty")
	}
	return value, nil
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)
}
