package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS market_data_cache (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ
)`

type postgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgres connects a pgx pool and creates the cache table
func NewPostgres(ctx context.Context, dsn string, ttl time.Duration) (*Cache, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return newCache("postgres", &postgresStore{pool: pool, now: time.Now}, ttl), nil
}

// nullableTime maps the zero time to SQL NULL
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (p *postgresStore) put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := p.now()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO market_data_cache (key, value, updated_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value,
		   updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`,
		key, value, now, nullableTime(expiry(now, ttl)),
	)
	return err
}

func (p *postgresStore) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM market_data_cache
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		key, p.now(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *postgresStore) deleteExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM market_data_cache WHERE expires_at IS NOT NULL AND expires_at <= $1`, p.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *postgresStore) close() error {
	p.pool.Close()
	return nil
}
