package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harbourview/driftsync/internal/core/domain"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// Ensure sourceStore implements the interface.
var _ driven.SourceStore = (*sourceStore)(nil)

type sourceStore struct {
	db *sql.DB
}

func (s *sourceStore) Save(ctx context.Context, source *domain.Source) error {
	config, err := json.Marshal(source.Config)
	if err != nil {
		return fmt.Errorf("marshal source config: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, type, config, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config = excluded.config`,
		source.ID, source.Name, source.Type, string(config), source.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save source: %w", err)
	}
	return nil
}

func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, config, created_at FROM sources WHERE id = ?`, id)

	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get source: %w", err)
	}
	return source, nil
}

func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, config, created_at FROM sources ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, *source)
	}
	return sources, rows.Err()
}

func (s *sourceStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var (
		source    domain.Source
		config    string
		createdAt int64
	)
	if err := row.Scan(&source.ID, &source.Name, &source.Type, &config, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(config), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshal source config: %w", err)
	}
	source.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &source, nil
}
