package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a new pgx connection pool using the provided DSN.
// It pings the database to ensure the connection is valid.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	// Use a short-lived context for the initial ping.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the appointments table and its uniqueness index if
// they do not exist yet. The partial unique index on (date, time) is what
// makes the final booking write an atomic insert-if-absent: a second booking
// for the same slot fails with a uniqueness violation instead of silently
// double-booking. Cancelled rows are outside the index, so cancelling an
// appointment frees its slot for rebooking.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
CREATE TABLE IF NOT EXISTS public.appointments (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name       varchar(100) NOT NULL,
	email      varchar(120) NOT NULL,
	phone      varchar(20),
	date       date NOT NULL,
	time       varchar(10) NOT NULL,
	service    varchar(100) NOT NULL,
	status     varchar(20) NOT NULL DEFAULT 'pending',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS appointments_date_time_key
	ON public.appointments (date, time)
	WHERE status <> 'cancelled';
`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
