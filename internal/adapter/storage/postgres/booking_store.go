package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
)

type BookingStore struct {
	db *pgxpool.Pool
}

func NewBookingStore(db *pgxpool.Pool) *BookingStore {
	return &BookingStore{db: db}
}

const bookingColumns = `id, user_id, pickup, drop_off, distance_km, time_minutes,
	estimated_fare, status, assigned_driver, payment_status, created_at, updated_at`

func (s *BookingStore) Create(ctx context.Context, b *domain.Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, user_id, pickup, drop_off, distance_km, time_minutes,
			estimated_fare, status, assigned_driver, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.UserID, b.Pickup, b.Drop, b.DistanceKm, b.TimeMinutes,
		b.EstimatedFare, string(b.Status), b.AssignedDriver, string(b.PaymentStatus),
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BookingStore) Get(ctx context.Context, id string) (*domain.Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (s *BookingStore) ListByRider(ctx context.Context, riderID string) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings WHERE user_id = $1
		ORDER BY created_at DESC`, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *BookingStore) ListAll(ctx context.Context) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// SetAssignment writes assignment and status in one statement so the
// pair can never be observed half-updated.
func (s *BookingStore) SetAssignment(ctx context.Context, id string, driverID *string, status domain.BookingStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET assigned_driver = $1, status = $2, updated_at = now()
		WHERE id = $3`,
		driverID, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *BookingStore) SetStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *BookingStore) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET payment_status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.Pickup, &b.Drop, &b.DistanceKm, &b.TimeMinutes,
		&b.EstimatedFare, &b.Status, &b.AssignedDriver, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
