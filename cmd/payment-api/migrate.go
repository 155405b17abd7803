package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akylbek/payment-system/payment-api/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the payments table and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, _, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", cfg.DatabaseDriver)
			return nil
		},
	}
}
