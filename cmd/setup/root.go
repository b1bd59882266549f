package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/config"
	"io.winapps.babytracker/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "setup",
	Short: "Bootstrap the baby tracker database and media buckets",
	Long: `setup prepares the backing services of the baby tracker API.
It reads the same environment (and .env file) as the API server.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(allCmd)
}

// environment loads configuration and a logger for a sub-command.
func environment() (*config.Config, *zap.SugaredLogger, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	l, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l.Sugar(), nil
}
