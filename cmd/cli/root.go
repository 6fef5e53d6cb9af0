package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/utils"
)

var configPath string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pricecrowd",
		Short: "PriceCrowd receipt ingestion and price index backend",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.LoadConfigFile(configPath)
		},
		RunE: runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the yaml config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	return rootCmd
}

func newLogger() logging.Logger {
	return logging.NewJSON(os.Stdout, utils.GetConfig("LOG_LEVEL"))
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
