package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "mindmesh",
	Short: "Mindmesh - a force-directed mind-map layout engine",
	Long: `Mindmesh positions content nodes in 2D space with a force-directed
simulation, manages weighted typed relationships between them, and groups
densely connected nodes into clusters.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "tuning config file (yaml)")
}

func Execute() error {
	return rootCmd.Execute()
}
