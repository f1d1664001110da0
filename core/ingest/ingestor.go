// Package ingest is the validation boundary between upstream similarity
// producers and the graph store. It is the only path by which connections
// enter the store, which keeps the dedup and range invariants enforced in
// one place.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adalundhe/mindmesh/core/graph"
)

// Signal is one relationship tuple from an upstream analysis producer.
// Strength and confidence arrive untrusted and may be out of range.
type Signal struct {
	Source     string
	Target     string
	Type       graph.RelationType
	Strength   float64
	Confidence float64
}

// Report summarizes the outcome of a batch ingest.
type Report struct {
	Accepted   int
	Clamped    int
	Duplicates int
	Rejected   int
}

// Ingestor validates and normalizes signals before insertion. It never
// creates placeholder nodes: a signal referencing an unknown node is
// rejected, because node identities must come from the content subsystem.
type Ingestor struct {
	store  *graph.Store
	logger *slog.Logger
}

// NewIngestor creates an ingestor over the store. A nil logger falls back
// to slog.Default.
func NewIngestor(store *graph.Store, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: store, logger: logger}
}

// Ingest validates one signal and inserts it. Strength and confidence are
// clamped into [0,1] rather than rejected, since upstream scorers
// routinely overshoot. Returns graph.ErrUnknownNode when either
// endpoint is absent and graph.ErrInvalidRelationType for an undefined
// relation. A signal duplicating an existing unordered pair is accepted
// silently without modifying the stored connection.
func (in *Ingestor) Ingest(sig Signal) error {
	if sig.Source == sig.Target {
		return fmt.Errorf("ingest: self relation on %s: %w", sig.Source, graph.ErrInvalidRange)
	}

	err := in.store.AddConnection(sig.Source, sig.Target, sig.Type,
		clamp(sig.Strength), clamp(sig.Confidence))
	if err != nil {
		in.logger.Debug("signal rejected",
			"source", sig.Source,
			"target", sig.Target,
			"type", sig.Type.String(),
			"error", err)
		return err
	}
	return nil
}

// IngestBatch feeds a slice of signals through Ingest and tallies the
// outcomes. Rejections do not abort the batch.
func (in *Ingestor) IngestBatch(signals []Signal) Report {
	var report Report
	for _, sig := range signals {
		clamped := sig.Strength != clamp(sig.Strength) || sig.Confidence != clamp(sig.Confidence)
		duplicate := in.store.HasConnection(sig.Source, sig.Target)

		if err := in.Ingest(sig); err != nil {
			report.Rejected++
			continue
		}
		switch {
		case duplicate:
			report.Duplicates++
		default:
			report.Accepted++
			if clamped {
				report.Clamped++
			}
		}
	}
	return report
}

// Rescore revises an existing connection's weights in place, with the
// same clamping as Ingest.
func (in *Ingestor) Rescore(connectionID string, strength, confidence float64) error {
	err := in.store.UpdateConnection(connectionID, clamp(strength), clamp(confidence))
	if err != nil && !errors.Is(err, graph.ErrConnectionNotFound) {
		in.logger.Debug("rescore rejected", "connection", connectionID, "error", err)
	}
	return err
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
