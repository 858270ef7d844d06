package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pitchcoach/models"
)

// DefaultDocumentName is the row the deploy pipeline publishes to
const DefaultDocumentName = "pitch_model"

// Querier is the slice of pgxpool.Pool the source needs
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource fetches the trained model document from the
// model_documents table.
type PostgresSource struct {
	db   Querier
	name string
}

// NewPostgresSource creates a document source reading the named row
func NewPostgresSource(db Querier, name string) *PostgresSource {
	if name == "" {
		name = DefaultDocumentName
	}
	return &PostgresSource{db: db, name: name}
}

// Fetch reads and parses the document
func (p *PostgresSource) Fetch(ctx context.Context) (*models.ModelData, error) {
	var doc []byte
	err := p.db.QueryRow(ctx,
		"SELECT document FROM model_documents WHERE name = $1", p.name).Scan(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to query model document %q: %w", p.name, err)
	}

	model, err := models.ParseModelData(doc)
	if err != nil {
		return nil, fmt.Errorf("model document %q: %w", p.name, err)
	}
	return model, nil
}
