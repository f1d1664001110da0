package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/adalundhe/mindmesh/core/graph"
	"github.com/adalundhe/mindmesh/core/ingest"
)

// Loader streams a feed into a graph store: items first through
// graph.AddNode, then relations through the ingest boundary, so every
// invariant (mass, range, dedup) is enforced on the way in.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Populate fills the store from items and relations, returning the ingest
// report. Items with malformed importance are skipped and logged rather
// than aborting the load, so one bad upstream row cannot sink a whole
// mind map.
func (l *Loader) Populate(store *graph.Store, items []Item, relations []Relation) ingest.Report {
	for _, item := range items {
		err := store.AddNode(graph.Node{
			ID:         item.ID,
			Label:      item.Label,
			Radius:     item.Radius,
			Importance: item.Importance,
			Confidence: item.Confidence,
		})
		if err != nil {
			l.logger.Warn("skipping item", "id", item.ID, "error", err)
		}
	}

	ingestor := ingest.NewIngestor(store, l.logger)
	signals := make([]ingest.Signal, 0, len(relations))
	for _, rel := range relations {
		relType, ok := graph.ParseRelationType(rel.Type)
		if !ok {
			l.logger.Warn("unrecognized relation type, treating as semantic",
				"source", rel.Source, "target", rel.Target, "type", rel.Type)
		}
		signals = append(signals, ingest.Signal{
			Source:     rel.Source,
			Target:     rel.Target,
			Type:       relType,
			Strength:   rel.Strength,
			Confidence: rel.Confidence,
		})
	}
	report := ingestor.IngestBatch(signals)

	l.logger.Debug("feed loaded",
		"items", store.NodeCount(),
		"accepted", report.Accepted,
		"clamped", report.Clamped,
		"duplicates", report.Duplicates,
		"rejected", report.Rejected)
	return report
}

// FromStore loads everything in a feed database into the graph store.
func (l *Loader) FromStore(ctx context.Context, src *Store, store *graph.Store) (ingest.Report, error) {
	items, err := src.Items(ctx)
	if err != nil {
		return ingest.Report{}, err
	}
	relations, err := src.Relations(ctx)
	if err != nil {
		return ingest.Report{}, err
	}
	return l.Populate(store, items, relations), nil
}

// Document is the JSON feed shape, mirroring the SQLite tables for
// producers that hand over a file instead of a database.
type Document struct {
	Items     []Item     `json:"items"`
	Relations []Relation `json:"relations"`
}

// FromJSON loads a JSON feed file into the graph store.
func (l *Loader) FromJSON(path string, store *graph.Store) (ingest.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Report{}, fmt.Errorf("read feed %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ingest.Report{}, fmt.Errorf("parse feed %s: %w", path, err)
	}
	return l.Populate(store, doc.Items, doc.Relations), nil
}
