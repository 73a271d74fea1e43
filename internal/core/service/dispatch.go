package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
	"github.com/bmkl23/taxi-management-system/internal/observability"
)

// DispatchService binds bookings to drivers. It keeps no state of its
// own beyond pending offer timers: every decision re-reads the stores.
type DispatchService struct {
	bookings port.BookingStore
	drivers  port.DriverRegistry
	notifier port.Notifier
	fare     domain.FareEstimator
	log      *zap.Logger

	// offerTTL bounds how long a provisional hold may wait for the
	// driver's answer. Zero disables the timeout and a silent driver
	// holds the offer until it responds or the ride is cancelled.
	offerTTL time.Duration

	mu     sync.Mutex
	offers map[string]*time.Timer
}

func NewDispatchService(bookings port.BookingStore, drivers port.DriverRegistry, notifier port.Notifier, fare domain.FareEstimator, log *zap.Logger) *DispatchService {
	return &DispatchService{
		bookings: bookings,
		drivers:  drivers,
		notifier: notifier,
		fare:     fare,
		log:      log,
		offers:   make(map[string]*time.Timer),
	}
}

// WithOfferTimeout enables auto-release of provisional holds after d.
func (s *DispatchService) WithOfferTimeout(d time.Duration) *DispatchService {
	s.offerTTL = d
	return s
}

type CreateBookingInput struct {
	Pickup      string
	Drop        string
	DistanceKm  float64
	TimeMinutes float64
}

// CreateBooking stores a new booking and runs one dispatch cycle for it.
func (s *DispatchService) CreateBooking(ctx context.Context, riderID string, in CreateBookingInput) (*domain.Booking, error) {
	fare, err := s.fare.EstimateFare(ctx, domain.FareInput{DistanceKm: in.DistanceKm, DurationMin: in.TimeMinutes})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &domain.Booking{
		ID:            uuid.NewString(),
		UserID:        riderID,
		Pickup:        in.Pickup,
		Drop:          in.Drop,
		DistanceKm:    in.DistanceKm,
		TimeMinutes:   in.TimeMinutes,
		EstimatedFare: fare,
		Status:        domain.BookingDriverPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	observability.BookingsCreated.Inc()

	if err := s.dispatch(ctx, b, map[string]bool{}); err != nil {
		return nil, err
	}

	return b, nil
}

// Accept records the held driver's acceptance. The action is refused
// when the booking is not currently assigned to that driver, with no
// state change and no notification.
func (s *DispatchService) Accept(ctx context.Context, bookingID, driverID string) error {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.AssignedDriver == nil || *b.AssignedDriver != driverID {
		return domain.ErrNotAssignedDriver
	}

	s.cancelOffer(bookingID)

	if err := s.bookings.SetAssignment(ctx, bookingID, &driverID, domain.BookingDriverAssigned); err != nil {
		return err
	}
	b.Status = domain.BookingDriverAssigned

	driver, err := s.drivers.Get(ctx, driverID)
	if err != nil {
		s.log.Error("assigned driver vanished during accept", zap.String("driverId", driverID), zap.Error(err))
		return err
	}

	s.notifier.SendToUser(b.UserID, port.EventBookingConfirmed, map[string]any{
		"booking": b,
		"driver":  driver,
		"message": fmt.Sprintf("Driver %s accepted your ride!", driver.Name),
	})
	s.notifier.Broadcast(port.EventBookingStatusUpdate, map[string]any{
		"bookingId": b.ID,
		"status":    b.Status,
	})
	s.notifier.Broadcast(port.EventDriverStatusUpdate, map[string]any{
		"driverId":    driverID,
		"status":      domain.DriverStatusBusy,
		"isAvailable": false,
	})

	return nil
}

// Reject releases the rejecting driver and makes one replacement
// attempt, never re-offering the booking to the same driver. A late
// reject is refused once the booking left DRIVER_PENDING or moved to
// another driver, so it cannot release someone else's hold or wake a
// cancelled booking.
func (s *DispatchService) Reject(ctx context.Context, bookingID, driverID string) error {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != domain.BookingDriverPending || b.AssignedDriver == nil || *b.AssignedDriver != driverID {
		return domain.ErrNotAssignedDriver
	}

	s.cancelOffer(bookingID)

	if err := s.drivers.Release(ctx, driverID); err != nil {
		s.log.Error("release failed for rejecting driver", zap.String("driverId", driverID), zap.Error(err))
		return err
	}
	observability.DispatchRejected.Inc()

	if err := s.dispatch(ctx, b, map[string]bool{driverID: true}); err != nil {
		return err
	}

	s.notifier.Broadcast(port.EventBookingStatusUpdate, map[string]any{
		"bookingId": b.ID,
		"status":    b.Status,
	})

	return nil
}

// dispatch runs one candidate-selection cycle for b and mutates b to
// the resulting state. Candidates lost to a concurrent hold are skipped;
// everything else about the search happens exactly once.
func (s *DispatchService) dispatch(ctx context.Context, b *domain.Booking, excluding map[string]bool) error {
	for {
		cand, err := s.drivers.FindCandidate(ctx, excluding)
		if err != nil {
			return err
		}

		if cand == nil {
			if err := s.bookings.SetAssignment(ctx, b.ID, nil, domain.BookingNoDriverAvailable); err != nil {
				return err
			}
			b.AssignedDriver = nil
			b.Status = domain.BookingNoDriverAvailable
			observability.DispatchNoDriver.Inc()
			s.log.Info("no driver available", zap.String("bookingId", b.ID))
			return nil
		}

		err = s.drivers.Reserve(ctx, cand.ID)
		if errors.Is(err, domain.ErrDriverUnavailable) {
			// lost the hold race to a concurrent dispatch
			excluding[cand.ID] = true
			continue
		}
		if err != nil {
			s.log.Error("reserve failed for candidate", zap.String("driverId", cand.ID), zap.Error(err))
			return err
		}

		driverID := cand.ID
		if err := s.bookings.SetAssignment(ctx, b.ID, &driverID, domain.BookingDriverPending); err != nil {
			return err
		}
		b.AssignedDriver = &driverID
		b.Status = domain.BookingDriverPending
		observability.DispatchAssigned.Inc()

		if ok := s.notifier.SendToUser(driverID, port.EventNewRideRequest, b); !ok {
			s.log.Warn("offered driver has no live connection", zap.String("driverId", driverID), zap.String("bookingId", b.ID))
		}
		s.startOffer(b.ID, driverID)
		return nil
	}
}

func (s *DispatchService) startOffer(bookingID, driverID string) {
	if s.offerTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.offers[bookingID]; ok {
		t.Stop()
	}
	s.offers[bookingID] = time.AfterFunc(s.offerTTL, func() {
		s.expireOffer(bookingID, driverID)
	})
}

func (s *DispatchService) cancelOffer(bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.offers[bookingID]; ok {
		t.Stop()
		delete(s.offers, bookingID)
	}
}

// expireOffer fires when a held driver never answered. The booking is
// re-checked first: the timer may race the driver's accept or reject.
func (s *DispatchService) expireOffer(bookingID, driverID string) {
	s.mu.Lock()
	delete(s.offers, bookingID)
	s.mu.Unlock()

	ctx := context.Background()
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		s.log.Error("offer expiry lookup failed", zap.String("bookingId", bookingID), zap.Error(err))
		return
	}
	if b.Status != domain.BookingDriverPending || b.AssignedDriver == nil || *b.AssignedDriver != driverID {
		return
	}

	s.log.Info("offer expired, releasing held driver",
		zap.String("bookingId", bookingID), zap.String("driverId", driverID))
	observability.OffersExpired.Inc()

	if err := s.drivers.Release(ctx, driverID); err != nil {
		s.log.Error("release failed for expired offer", zap.String("driverId", driverID), zap.Error(err))
		return
	}
	if err := s.dispatch(ctx, b, map[string]bool{driverID: true}); err != nil {
		s.log.Error("re-dispatch after expired offer failed", zap.String("bookingId", bookingID), zap.Error(err))
		return
	}

	s.notifier.Broadcast(port.EventBookingStatusUpdate, map[string]any{
		"bookingId": b.ID,
		"status":    b.Status,
	})
}
