package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

const eventColumns = `id, title, date_display, date_key, location, price, price_value, category, link, image, source, created_at`

// UpsertEvents inserts events one by one, skipping identity keys that already
// exist. A single failing record is counted and logged, never aborting the
// batch.
func (r *PostgresRepository) UpsertEvents(ctx context.Context, events []models.Event) (int, int, error) {
	query := `
		INSERT INTO events (title, date_display, date_key, location, price, price_value, category, link, image, source, identity_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (identity_key) DO NOTHING
	`

	saved, skipped := 0, 0
	for i := range events {
		e := &events[i]
		tag, err := r.pool.Exec(ctx, query,
			e.Title, e.DateDisplay, e.DateKey, e.Location,
			e.Price, e.PriceValue, e.Category, e.Link, e.Image,
			e.Source, e.IdentityKey(),
		)
		if err != nil {
			skipped++
			log.Printf("failed to save event %q: %v", e.Title, err)
			continue
		}
		if tag.RowsAffected() == 0 {
			skipped++
			continue
		}
		saved++
	}

	return saved, skipped, nil
}

// ExistingIdentityKeys reports which keys are already present.
func (r *PostgresRepository) ExistingIdentityKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return existing, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT identity_key FROM events WHERE identity_key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query identity keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan identity key: %w", err)
		}
		existing[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return existing, nil
}

// ListEvents returns the full feed ordered by date key, undated events last.
func (r *PostgresRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		ORDER BY date_key ASC NULLS LAST, id ASC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListEventsBySource returns one source's events, same ordering.
func (r *PostgresRepository) ListEventsBySource(ctx context.Context, source string) ([]models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE source = $1
		ORDER BY date_key ASC NULLS LAST, id ASC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by source: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// SearchEvents applies text, date range and price range filters.
func (r *PostgresRepository) SearchEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter.Search != "" {
		whereClause += fmt.Sprintf(
			" AND (title ILIKE $%d OR location ILIKE $%d OR category ILIKE $%d)",
			argPos, argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.FromDate != nil {
		whereClause += fmt.Sprintf(" AND date_key >= $%d", argPos)
		args = append(args, *filter.FromDate)
		argPos++
	}
	if filter.ToDate != nil {
		whereClause += fmt.Sprintf(" AND date_key <= $%d", argPos)
		args = append(args, *filter.ToDate)
		argPos++
	}
	if filter.MinPrice != nil {
		whereClause += fmt.Sprintf(" AND price_value >= $%d", argPos)
		args = append(args, *filter.MinPrice)
		argPos++
	}
	if filter.MaxPrice != nil {
		whereClause += fmt.Sprintf(" AND price_value <= $%d", argPos)
		args = append(args, *filter.MaxPrice)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM events
		%s
		ORDER BY date_key ASC NULLS LAST, id ASC
	`, eventColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEvents(rows pgxRows) ([]models.Event, error) {
	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.DateDisplay, &e.DateKey, &e.Location,
			&e.Price, &e.PriceValue, &e.Category, &e.Link, &e.Image,
			&e.Source, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

// Close closes the database connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
