package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/pipenet/internal/config"
	"github.com/aretw0/pipenet/internal/logging"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	BackendURL string
	Listen     string
	LogLevel   string
	Debug      bool
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.BackendURL != "" {
		cfg.Backend.URL = opts.BackendURL
	}
	if opts.Listen != "" {
		cfg.Dashboard.Listen = opts.Listen
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// createLogger configures the application logger. Logs always go to Stderr
// so diagrams and reports on Stdout stay clean.
func createLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if cfg.Format == "json" {
		return logging.NewJSON(w, level)
	}
	return logging.NewText(w, level)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
