package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/quickgen/internal/config"
	"github.com/user/quickgen/internal/prompt"
	"github.com/user/quickgen/internal/session"
	"github.com/user/quickgen/internal/state"
	"github.com/user/quickgen/pkg/llm"
	"github.com/user/quickgen/pkg/llm/openai"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "quickgen",
	Short:         "Describe a web page, get a web page",
	Long:          "quickgen turns natural-language descriptions into standalone HTML pages,\nkeeping every workspace, conversation, and generated page on local disk.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".quickgen", "config.json"),
		"config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the config, exiting on failure. Command
// RunE funcs call this instead of threading the config through cobra.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func openStore(cfg *config.Config) (*state.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return state.NewStore(cfg.DataDir), nil
}

func newProvider(cfg *config.Config) llm.Provider {
	return openai.New(&llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
}

func newController(cfg *config.Config, store *state.Store) (*session.Controller, error) {
	engine, err := prompt.New(cfg.LLM.Model, cfg.LLM.MaxContextTokens, cfg.LLM.OutputReserve)
	if err != nil {
		return nil, fmt.Errorf("create prompt engine: %w", err)
	}
	return session.New(store, newProvider(cfg), engine, int64(cfg.MaxConcurrent)), nil
}
