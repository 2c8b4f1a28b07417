package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"voice-scene/config"
	"voice-scene/internal/domain"
	"voice-scene/internal/keywords"
)

var (
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:   "vui",
	Short: "Voice commands for a small 3-D scene",
	Long: `vui turns short spoken phrases into actions on three scene targets
(rotate, move, enlarge, shrink) or forwards them to a chat channel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv(envPath)
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "path to .env file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interpretCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig falls back to defaults when the default config file is absent;
// an explicitly given path must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

func loadKeywords(cfg config.KeywordsConfig) (domain.Keywords, error) {
	if cfg.Path == "" {
		return domain.DefaultKeywords(), nil
	}
	kw, err := keywords.Load(cfg.Path)
	if err != nil {
		return domain.Keywords{}, fmt.Errorf("loading keywords: %w", err)
	}
	return kw, nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
