package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore serves the content inventory from the contents table,
// where the upload/approval workflow writes it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed content store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const itemColumns = `id, title, description, subject, level, content_type, video_count, hours, uploaded_by, approved`

// ByID returns an approved item by ID. Backend errors degrade to
// not-found and are logged; resolution falls back rather than failing.
func (s *PostgresStore) ByID(ctx context.Context, id string) (Item, bool) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+`
		 FROM contents
		 WHERE id = $1 AND approved
		 LIMIT 1`,
		id,
	)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, false
	}
	if err != nil {
		slog.Error("catalog lookup failed", "content_id", id, "error", err)
		return Item{}, false
	}
	return item, true
}

// All returns all approved items ordered by title.
func (s *PostgresStore) All(ctx context.Context) []Item {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM contents
		 WHERE approved
		 ORDER BY title ASC`,
	)
	if err != nil {
		slog.Error("catalog listing failed", "error", err)
		return nil
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			slog.Error("catalog row scan failed", "error", err)
			return nil
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		slog.Error("catalog listing failed", "error", err)
		return nil
	}
	return items
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Subject,
		&item.Level,
		&item.Type,
		&item.VideoCount,
		&item.Hours,
		&item.UploadedBy,
		&item.Approved,
	)
	return item, err
}
