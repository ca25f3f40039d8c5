package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"voucherbot/internal/config"
	"voucherbot/internal/escalation"
	"voucherbot/internal/logging"
	"voucherbot/internal/perception"
	"voucherbot/internal/router"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "voucherbot",
	Short: "VoucherBot - semantic routing engine for NYC housing voucher search",
	Long: `VoucherBot routes natural-language housing questions to intents.

A deterministic pattern tier handles the common phrasings; an LLM fallback
tier picks up everything else. Escalation patterns (discrimination reports,
requests for a human caseworker) preempt classification and attach contact
information for the right NYC agency.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars win either way.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(cfg.Logging.Dir, level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

// buildEngine assembles the routing engine from the loaded config. A
// missing API key is not fatal; the engine runs pattern-tier only and
// degrades unmatched messages to UNKNOWN.
func buildEngine() *router.Router {
	var gen perception.Generator
	if cfg.LLM.APIKey != "" {
		timeout := config.Duration(cfg.LLM.Timeout, 60*time.Second)
		switch cfg.LLM.Provider {
		case "anthropic":
			c := perception.DefaultAnthropicConfig(cfg.LLM.APIKey)
			if cfg.LLM.Model != "" {
				c.Model = cfg.LLM.Model
			}
			if cfg.LLM.BaseURL != "" {
				c.BaseURL = cfg.LLM.BaseURL
			}
			c.Timeout = timeout
			gen = perception.NewAnthropicClientWithConfig(c)
		default:
			c := perception.DefaultOpenAIConfig(cfg.LLM.APIKey)
			if cfg.LLM.Model != "" {
				c.Model = cfg.LLM.Model
			}
			if cfg.LLM.BaseURL != "" {
				c.BaseURL = cfg.LLM.BaseURL
			}
			c.Timeout = timeout
			gen = perception.NewOpenAIClientWithConfig(c)
		}
	} else {
		logging.Boot("no LLM API key configured, running pattern tier only")
	}

	var fb *perception.Fallback
	if gen != nil {
		fb = perception.NewFallbackWithConfig(gen, perception.FallbackConfig{
			MaxRetries:     cfg.Fallback.MaxRetries,
			AttemptTimeout: config.Duration(cfg.Fallback.AttemptTimeout, 30*time.Second),
			BackoffBase:    config.Duration(cfg.Fallback.BackoffBase, time.Second),
		})
	}

	return router.New(escalation.NewDetector(nil), fb)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "voucherbot.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
