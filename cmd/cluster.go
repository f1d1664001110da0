package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adalundhe/mindmesh/core/cluster"
	"github.com/adalundhe/mindmesh/core/config"
	"github.com/adalundhe/mindmesh/core/graph"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <feed>",
	Short: "Run cluster detection over a feed without simulating",
	Long: `Cluster loads a feed and reports which densely connected components
qualify as clusters under the configured thresholds. Positions are left
unseeded, so centroids and radii reflect connectivity only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCluster(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
}

func runCluster(ctx context.Context, feedPath string) error {
	manager, err := config.NewManager(configPath, slog.Default())
	if err != nil {
		return err
	}

	store := graph.NewStore()
	if _, err := loadFeed(ctx, feedPath, store); err != nil {
		return err
	}

	detector := cluster.NewDetector(manager.Get().Cluster, slog.Default())
	clusters := detector.Detect(store)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLUSTER\tMEMBERS\tIMPORTANCE")
	for _, c := range clusters {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", c.ID, len(c.Members), c.Importance)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	unclustered := store.NodeCount()
	for _, c := range clusters {
		unclustered -= len(c.Members)
	}
	fmt.Printf("\n%d clusters, %d unclustered nodes\n", len(clusters), unclustered)
	return nil
}
