package main

import (
	"github.com/spf13/cobra"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run migrate and buckets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sugar, err := environment()
		if err != nil {
			return err
		}
		if err := runMigrate(cmd, cfg); err != nil {
			return err
		}
		return runBuckets(cmd, cfg, sugar)
	},
}
