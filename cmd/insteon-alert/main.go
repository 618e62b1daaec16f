package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"insteon-alert/config"
	"insteon-alert/internal/application"
)

const (
	exitError      = 1
	exitValidation = 2
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "insteon-alert",
	Short: "Send Insteon commands through an Insteon Hub",
	Long: `insteon-alert sends a symbolic Insteon command (on, off, beep_three_times, ...)
to one or more devices through the HTTP API of an Insteon Hub.

Devices are given as hex addresses (AABBCC, aa:bb:cc, aa-bb-cc, aa.bb.cc) or as
names listed in a CSV lookup file with "name" and "address" columns.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (defaults are used when empty)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(commandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var verrs application.ValidationErrors
		if errors.As(err, &verrs) {
			os.Exit(exitValidation)
		}
		os.Exit(exitError)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setupLogger writes to w rather than stdout, which carries the per-call
// result lines.
func setupLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
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
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
