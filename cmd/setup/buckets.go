package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/config"
	"io.winapps.babytracker/internal/storage"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Create the photos and videos buckets with public read access",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sugar, err := environment()
		if err != nil {
			return err
		}
		return runBuckets(cmd, cfg, sugar)
	},
}

func runBuckets(cmd *cobra.Command, cfg *config.Config, sugar *zap.SugaredLogger) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	objects, cleanup, err := storage.Open(ctx, cfg.Storage, sugar)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, b := range storage.Buckets() {
		if err := objects.EnsureBucket(ctx, b); err != nil {
			return fmt.Errorf("bucket %s: %w", b, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Bucket %s ready (%s)\n", b, cfg.Storage.Driver)
	}
	return nil
}
