package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-server/internal/config"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "gomoku",
		Short: "Multi-user gomoku server",
		Long: `gomoku runs a multi-user gomoku (five in a row) server speaking a
line-based text protocol over TCP, with an optional HTTP admin API and
web spectator pages.

Besides running the server it can inspect the stored accounts offline and
query a running server's admin API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfg.ConfigPath, "config", "c", cfg.ConfigPath, "Server config file (env: GOMOKU_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Admin API URL (env: GOMOKU_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: "+OutputText+", "+OutputJSON)
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newMatchesCmd())
	rootCmd.AddCommand(newWhoCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadServerConfig reads the server configuration, letting any flags the
// command defines override the file and environment
func loadServerConfig(cmd *cobra.Command) (config.Config, error) {
	serverCfg, err := config.Load(cfg.ConfigPath, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Verbose {
		serverCfg.Log.Level = "debug"
	}
	return serverCfg, nil
}
