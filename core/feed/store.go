// Package feed is the CLI-facing bridge to the upstream content and
// relationship producers: a small SQLite store holding content items and
// scored relations, streamed into the engine through the ingest boundary.
// The engine itself never persists simulation state; this store only
// carries the inputs a layout run is derived from.
package feed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Item is one content identity with its upstream-computed weights.
type Item struct {
	ID         string  `json:"id"`
	Label      string  `json:"label,omitempty"`
	Importance float64 `json:"importance"`
	Confidence float64 `json:"confidence"`
	Radius     float64 `json:"radius,omitempty"`
}

// Relation is one scored relationship tuple between two items.
type Relation struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Type       string  `json:"type"`
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

// Store is the SQLite-backed feed.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a feed database at path. Foreign keys
// are enabled so removing an item cascades to its relations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init feed schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddItem inserts or replaces a content item.
func (s *Store) AddItem(ctx context.Context, item Item) error {
	if item.Radius <= 0 {
		item.Radius = 20
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO items (id, label, importance, confidence, radius, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Label, item.Importance, item.Confidence, item.Radius,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add item %s: %w", item.ID, err)
	}
	return nil
}

// AddRelation inserts or replaces a relation. Endpoints are normalized so
// the unordered pair occupies one row.
func (s *Store) AddRelation(ctx context.Context, rel Relation) error {
	source, target := rel.Source, rel.Target
	if source > target {
		source, target = target, source
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO relations (source, target, relation_type, strength, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source, target, rel.Type, rel.Strength, rel.Confidence,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add relation %s-%s: %w", rel.Source, rel.Target, err)
	}
	return nil
}

// Items returns all content items ordered by ID.
func (s *Store) Items(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, importance, confidence, radius FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Label, &item.Importance, &item.Confidence, &item.Radius); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Relations returns all relations ordered by endpoint pair.
func (s *Store) Relations(ctx context.Context) ([]Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, relation_type, strength, confidence
		FROM relations ORDER BY source, target
	`)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	var relations []Relation
	for rows.Next() {
		var rel Relation
		if err := rows.Scan(&rel.Source, &rel.Target, &rel.Type, &rel.Strength, &rel.Confidence); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

// RemoveItem deletes an item; relations cascade via the schema.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove item %s: %w", id, err)
	}
	return nil
}
