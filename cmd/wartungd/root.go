package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wartungsmanager-backend/config"
	"wartungsmanager-backend/internal/logging"
)

var (
	configPath string
	envFiles   []string
)

var rootCmd = &cobra.Command{
	Use:          "wartungd",
	Short:        "Backend for the dive shop bottle filling workflow",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Env files to load before reading the config")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

// loadConfig reads env files and the config, then sets up logging.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	path := configPath
	if path == "" {
		path = config.PathFromEnv()
	}
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}

	logging.Configure(logging.Options{
		Dir:        cfg.Log.Dir,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Production: config.IsProduction(),
	})
	for _, w := range cfg.Warnings() {
		logging.Get().Warn(w)
	}
	return cfg, nil
}
