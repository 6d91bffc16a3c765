package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geogpt/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geogpt",
	Short: "Two-tier geocoding: offline postal dataset with LLM fallback",
	Long:  "Resolves place descriptions to coordinates and postal metadata using the offline GeoNames postal dataset, falling back to a configured LLM provider for whatever the dataset cannot answer.",
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
