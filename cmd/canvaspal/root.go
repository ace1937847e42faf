package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/internal/config"
	"github.com/Sternrassler/canvaspal/pkg/logging"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "canvaspal",
	Short: "A terminal dashboard for your Canvas LMS courses",
	Long: `canvaspal fetches your active Canvas courses with their assignments and
modules, rotating over every API token in the token directory, and shows them
as a searchable table.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		flags := cmd.Flags()
		if flags.Changed("base-url") {
			cfg.BaseURL, _ = flags.GetString("base-url")
		}
		if flags.Changed("token-dir") {
			cfg.TokenDir, _ = flags.GetString("token-dir")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logging.Setup(logging.Config{
			Level:  logging.LogLevel(cfg.LogLevel),
			Pretty: cfg.LogPretty,
			Output: os.Stderr,
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "canvaspal:", err)
		os.Exit(1)
	}
}

func init() {
	defaultPath, _ := config.DefaultPath()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "Config file path")
	rootCmd.PersistentFlags().String("base-url", "", "Canvas base URL (overrides CANVAS_URL)")
	rootCmd.PersistentFlags().String("token-dir", "", "Directory of .txt token files (overrides CANVAS_TOKEN_DIR)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}
