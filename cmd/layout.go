package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/mindmesh/core/config"
	"github.com/adalundhe/mindmesh/core/feed"
	"github.com/adalundhe/mindmesh/core/graph"
	"github.com/adalundhe/mindmesh/core/layout"
)

var (
	layoutOutput  string
	layoutTimeout time.Duration
	layoutMaxIter int
)

var layoutCmd = &cobra.Command{
	Use:   "layout <feed>",
	Short: "Run a layout over a feed database or JSON feed file",
	Long: `Layout loads content items and scored relations from a feed (a SQLite
database created with "mindmesh feed init", or a JSON file), runs the
force simulation until it settles, and writes the positioned graph as
JSON for a renderer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLayout(cmd.Context(), args[0])
	},
}

func init() {
	layoutCmd.Flags().StringVarP(&layoutOutput, "output", "o", "", "write layout JSON here instead of stdout")
	layoutCmd.Flags().DurationVar(&layoutTimeout, "timeout", 2*time.Minute, "abort the run after this long")
	layoutCmd.Flags().IntVar(&layoutMaxIter, "max-iterations", 0, "override the iteration cap")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(ctx context.Context, feedPath string) error {
	manager, err := config.NewManager(configPath, slog.Default())
	if err != nil {
		return err
	}
	cfg := manager.Get()
	if layoutMaxIter > 0 {
		cfg.Physics.MaxIterations = layoutMaxIter
	}

	store := graph.NewStore()
	if _, err := loadFeed(ctx, feedPath, store); err != nil {
		return err
	}

	session, err := layout.NewSession(store, layout.Options{
		Tuning:  cfg.Physics,
		Cluster: cfg.Cluster,
		Config:  cfg.Session,
		Logger:  slog.Default(),
	})
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, layoutTimeout)
	defer cancel()

	if err := session.Start(runCtx); err != nil {
		return err
	}
	state, err := session.Wait(runCtx)
	if err != nil {
		session.Cancel()
		return fmt.Errorf("layout run: %w", err)
	}
	slog.Info("layout finished",
		"state", state.String(),
		"iterations", session.Iterations(),
		"clusters", len(session.Snapshot().Clusters))

	return writeRender(session.Snapshot().Render())
}

func loadFeed(ctx context.Context, path string, store *graph.Store) (int, error) {
	loader := feed.NewLoader(slog.Default())
	if strings.HasSuffix(path, ".json") {
		report, err := loader.FromJSON(path, store)
		if err != nil {
			return 0, err
		}
		return report.Accepted, nil
	}

	src, err := feed.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	report, err := loader.FromStore(ctx, src, store)
	if err != nil {
		return 0, err
	}
	return report.Accepted, nil
}

func writeRender(render layout.RenderGraph) error {
	data, err := json.MarshalIndent(render, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	if layoutOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(layoutOutput, data, 0o644); err != nil {
		return fmt.Errorf("write layout %s: %w", layoutOutput, err)
	}
	return nil
}
