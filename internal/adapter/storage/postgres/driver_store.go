package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
)

// candidateScan is the page size FindCandidate walks the eligible set
// with while filtering by presence.
const candidateScan = 25

type DriverStore struct {
	db       *pgxpool.Pool
	presence port.Presence
}

func NewDriverStore(db *pgxpool.Pool, presence port.Presence) *DriverStore {
	return &DriverStore{db: db, presence: presence}
}

const driverColumns = `id, name, email, mobile, vehicle_number, password_hash,
	role, status, is_available, last_seen, created_at, updated_at`

func (s *DriverStore) Create(ctx context.Context, d *domain.Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (
			id, name, email, mobile, vehicle_number, password_hash,
			role, status, is_available, last_seen, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.Name, d.Email, d.Mobile, d.VehicleNumber, d.PasswordHash,
		string(d.Role), string(d.Status), d.IsAvailable, d.LastSeen, d.CreatedAt, d.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (s *DriverStore) Get(ctx context.Context, id string) (*domain.Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
	return scanDriver(row)
}

func (s *DriverStore) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE email = $1`, email)
	return scanDriver(row)
}

func (s *DriverStore) List(ctx context.Context) ([]domain.Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *DriverStore) Update(ctx context.Context, d *domain.Driver) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET name = $1, email = $2, mobile = $3, vehicle_number = $4,
		    password_hash = $5, role = $6, updated_at = now()
		WHERE id = $7`,
		d.Name, d.Email, d.Mobile, d.VehicleNumber, d.PasswordHash, string(d.Role), d.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}

func (s *DriverStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}

func (s *DriverStore) FindCandidate(ctx context.Context, excluding map[string]bool) (*domain.Driver, error) {
	excluded := make([]string, 0, len(excluding))
	for id := range excluding {
		excluded = append(excluded, id)
	}

	// Presence cannot be joined in SQL, so the scan pages through the
	// eligible set in last-seen order until a reachable driver turns up
	// or the set is exhausted.
	for offset := 0; ; offset += candidateScan {
		rows, err := s.db.Query(ctx, `
			SELECT `+driverColumns+`
			FROM drivers
			WHERE is_available = true AND status = 'AVAILABLE'
			  AND NOT (id = ANY($1))
			ORDER BY last_seen DESC
			LIMIT $2 OFFSET $3`, excluded, candidateScan, offset)
		if err != nil {
			return nil, err
		}

		var eligible []domain.Driver
		for rows.Next() {
			d, err := scanDriver(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			eligible = append(eligible, *d)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for i := range eligible {
			online, err := s.presence.IsOnline(ctx, eligible[i].ID)
			if err != nil {
				return nil, err
			}
			if online {
				return &eligible[i], nil
			}
		}
		if len(eligible) < candidateScan {
			return nil, nil
		}
	}
}

// Reserve is a conditional update: it may lose against a concurrent
// hold on the same driver, in which case the caller moves on.
func (s *DriverStore) Reserve(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET is_available = false, status = 'BUSY', updated_at = now()
		WHERE id = $1 AND is_available = true`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return domain.ErrDriverUnavailable
	}
	return nil
}

func (s *DriverStore) Release(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET is_available = true, status = 'AVAILABLE', updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}

func (s *DriverStore) SetAvailability(ctx context.Context, id string, available bool) (*domain.Driver, error) {
	status := domain.DriverStatusOffline
	if available {
		status = domain.DriverStatusAvailable
	}
	row := s.db.QueryRow(ctx, `
		UPDATE drivers
		SET is_available = $1, status = $2, last_seen = now(), updated_at = now()
		WHERE id = $3
		RETURNING `+driverColumns, available, string(status), id)
	return scanDriver(row)
}

func (s *DriverStore) Touch(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers SET last_seen = now(), updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Mobile, &d.VehicleNumber, &d.PasswordHash,
		&d.Role, &d.Status, &d.IsAvailable, &d.LastSeen, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
