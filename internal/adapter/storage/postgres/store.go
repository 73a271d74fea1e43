package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema when it does not exist yet. Deployments
// with managed migrations can skip it.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            text PRIMARY KEY,
			name          text NOT NULL,
			email         text NOT NULL UNIQUE,
			mobile        text NOT NULL,
			password_hash text NOT NULL,
			role          text NOT NULL DEFAULT 'USER',
			created_at    timestamptz NOT NULL DEFAULT now(),
			updated_at    timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS drivers (
			id             text PRIMARY KEY,
			name           text NOT NULL,
			email          text NOT NULL UNIQUE,
			mobile         text NOT NULL,
			vehicle_number text NOT NULL,
			password_hash  text NOT NULL,
			role           text NOT NULL DEFAULT 'DRIVER',
			status         text NOT NULL DEFAULT 'OFFLINE',
			is_available   boolean NOT NULL DEFAULT false,
			last_seen      timestamptz NOT NULL DEFAULT now(),
			created_at     timestamptz NOT NULL DEFAULT now(),
			updated_at     timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS bookings (
			id              text PRIMARY KEY,
			user_id         text NOT NULL REFERENCES users(id),
			pickup          text NOT NULL,
			drop_off        text NOT NULL,
			distance_km     double precision NOT NULL,
			time_minutes    double precision NOT NULL,
			estimated_fare  double precision NOT NULL,
			status          text NOT NULL DEFAULT 'DRIVER_PENDING',
			assigned_driver text REFERENCES drivers(id),
			payment_status  text NOT NULL DEFAULT 'PENDING',
			created_at      timestamptz NOT NULL DEFAULT now(),
			updated_at      timestamptz NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_drivers_candidates ON drivers (is_available, status, last_seen DESC);
	`)
	return err
}
