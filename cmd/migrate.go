package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a := &app{cfg: cfg, logger: logger}
		defer a.Close()

		s, err := a.store(ctx)
		if err != nil {
			return err
		}
		res, err := s.Migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", res.To)
		return nil
	},
}
