package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"io.winapps.babytracker/internal/config"
	"io.winapps.babytracker/internal/db"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := environment()
		if err != nil {
			return err
		}
		if migrateStatus {
			return printMigrationStatus(cmd, cfg)
		}
		return runMigrate(cmd, cfg)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "only list migrations and whether they are applied")
}

func runMigrate(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := db.InitPostgres(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied migration %05d\n", v)
	}
	return nil
}

func printMigrationStatus(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := db.InitPostgres(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	status, err := db.MigrationStatus(ctx, pool)
	if err != nil {
		return err
	}

	versions := make([]int64, 0, len(status))
	for v := range status {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	for _, v := range versions {
		state := "pending"
		if status[v] {
			state = "applied"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%05d  %s\n", v, state)
	}
	return nil
}
