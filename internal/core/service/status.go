package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
)

// StatusService guards booking status and payment transitions.
//
// By default any enumerated status is accepted from an authorized actor,
// including regressions, which is how the platform has always worked.
// Strict mode enforces domain.AllowedTransitions instead.
type StatusService struct {
	bookings port.BookingStore
	drivers  port.DriverRegistry
	notifier port.Notifier
	log      *zap.Logger
	strict   bool
}

func NewStatusService(bookings port.BookingStore, drivers port.DriverRegistry, notifier port.Notifier, log *zap.Logger) *StatusService {
	return &StatusService{
		bookings: bookings,
		drivers:  drivers,
		notifier: notifier,
		log:      log,
	}
}

func (s *StatusService) WithStrictTransitions() *StatusService {
	s.strict = true
	return s
}

// UpdateStatus applies a status change requested by the assigned driver
// or an admin and broadcasts the result.
func (s *StatusService) UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus, actor domain.Actor) (*domain.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	isAssignedDriver := b.AssignedDriver != nil && *b.AssignedDriver == actor.ID
	if !isAssignedDriver && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if !domain.ValidBookingStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	if s.strict && !domain.CanTransition(b.Status, status) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.bookings.SetStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	b.Status = status

	s.notifier.Broadcast(port.EventBookingStatusUpdate, map[string]any{
		"bookingId": b.ID,
		"status":    b.Status,
	})

	return b, nil
}

// UpdatePaymentStatus flips the payment flag. The broadcast is emitted
// on every call, repeated values included.
func (s *StatusService) UpdatePaymentStatus(ctx context.Context, bookingID string, status domain.PaymentStatus, actor domain.Actor) (*domain.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	isAssignedDriver := b.AssignedDriver != nil && *b.AssignedDriver == actor.ID
	if !isAssignedDriver && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if !domain.ValidPaymentStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	if err := s.bookings.SetPaymentStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	b.PaymentStatus = status

	s.notifier.Broadcast(port.EventPaymentStatusUpdate, map[string]any{
		"bookingId":      b.ID,
		"payment_status": b.PaymentStatus,
	})

	return b, nil
}

// Cancel terminates a booking on behalf of its rider or an admin. An
// assigned driver is released back to the pool and told directly.
func (s *StatusService) Cancel(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.UserID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if s.strict && !domain.CanTransition(b.Status, domain.BookingCancelled) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.bookings.SetStatus(ctx, bookingID, domain.BookingCancelled); err != nil {
		return nil, err
	}
	b.Status = domain.BookingCancelled

	if b.AssignedDriver != nil {
		driverID := *b.AssignedDriver
		if err := s.drivers.Release(ctx, driverID); err != nil {
			s.log.Error("release failed while cancelling", zap.String("driverId", driverID), zap.Error(err))
			return nil, err
		}
		s.notifier.SendToUser(driverID, port.EventRideCancelled, map[string]any{
			"rideId":  b.ID,
			"message": "Ride has been cancelled by user",
		})
	}

	return b, nil
}
