package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS models (
	model_key    TEXT PRIMARY KEY,
	corpus       TEXT NOT NULL,
	markov_order INTEGER NOT NULL,
	sentences    INTEGER NOT NULL,
	payload      BLOB NOT NULL,
	trained_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
`

// Store implements ports.ModelStore in a single SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the model row.
func (s *Store) Save(ctx context.Context, key string, model *domain.BaseModel) error {
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO models (model_key, corpus, markov_order, sentences, payload, trained_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(model_key) DO UPDATE SET
			corpus = excluded.corpus,
			markov_order = excluded.markov_order,
			sentences = excluded.sentences,
			payload = excluded.payload,
			trained_at = excluded.trained_at,
			updated_at = excluded.updated_at`,
		key, model.Corpus, model.Order, model.Sentences, payload,
		model.TrainedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save model %s: %w", key, err)
	}
	return nil
}

// Load reads the model row for key.
func (s *Store) Load(ctx context.Context, key string) (*domain.BaseModel, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM models WHERE model_key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("load model %s: %w", key, err)
	}

	var model domain.BaseModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("unmarshal model %s: %w", key, err)
	}
	return &model, nil
}

// Delete removes the model row.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE model_key = ?`, key); err != nil {
		return fmt.Errorf("delete model %s: %w", key, err)
	}
	return nil
}

// List returns stored keys ordered by key.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT model_key FROM models ORDER BY model_key`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan model key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
