package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "storegeo",
	Short: "Store directory builder: collect, geocode, generate",
	Long: `Builds a static directory of retail store locations.

collect scrapes store addresses from a store-locator search form,
geocode resolves them to coordinates reusing prior results as a cache,
and generate emits the directory as a Go source file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
