package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trivia-quiz/internal/config"
)

// Execute runs the CLI.
func Execute() error {
	// a .env file is optional
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trivia-quiz",
		Short:        "Timed multiple-choice trivia quiz backed by the Open Trivia Database",
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.String("config", "config/config.yaml", "path to YAML config (or set QUIZ_CONFIG)")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (text, json)")

	cmd.AddCommand(NewStartCmd())
	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewTokenCmd())
	return cmd
}

// viperForCmd binds a command's flags and QUIZ_* environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the YAML config and applies flag/env overrides for logging,
// then installs the default logger.
func loadConfig(cmd *cobra.Command) (config.Config, *viper.Viper, error) {
	v := viperForCmd(cmd)
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return cfg, v, err
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := v.GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	setupLogging(cfg.Log.Level, cfg.Log.Format)
	return cfg, v, nil
}

func setupLogging(level, format string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}
