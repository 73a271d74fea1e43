package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
)

func newStatusService(env *testEnv) *StatusService {
	return NewStatusService(env.bookings, env.drivers, env.notifier, zap.NewNop())
}

// assignedBooking creates a booking through the dispatcher and has the
// held driver accept it.
func assignedBooking(t *testing.T, env *testEnv, riderID string) (*domain.Booking, string) {
	t.Helper()
	driverID := env.addDriver(t, "assigned", time.Now(), true, true)
	b := env.createBooking(t, riderID)
	require.NoError(t, env.dispatch.Accept(context.Background(), b.ID, driverID))
	b, err := env.bookings.Get(context.Background(), b.ID)
	require.NoError(t, err)
	return b, driverID
}

func TestUpdateStatus_ByAssignedDriver(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, driverID := assignedBooking(t, env, "rider-1")

	before := env.notifier.broadcastCount(port.EventBookingStatusUpdate)
	updated, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingOngoing, domain.Actor{ID: driverID, Role: domain.RoleDriver})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingOngoing, updated.Status)
	assert.Equal(t, before+1, env.notifier.broadcastCount(port.EventBookingStatusUpdate))
}

func TestUpdateStatus_ForbiddenForStranger(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, _ := assignedBooking(t, env, "rider-1")

	_, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingOngoing, domain.Actor{ID: "someone-else", Role: domain.RoleDriver})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// the rider cannot drive their own booking forward either
	_, err = svc.UpdateStatus(context.Background(), b.ID, domain.BookingOngoing, domain.Actor{ID: "rider-1", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateStatus_AdminMayUpdateAnyBooking(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, _ := assignedBooking(t, env, "rider-1")

	updated, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingFinished, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingFinished, updated.Status)
}

func TestUpdateStatus_RejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, driverID := assignedBooking(t, env, "rider-1")

	_, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingStatus("TELEPORTED"), domain.Actor{ID: driverID, Role: domain.RoleDriver})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateStatus_PermissiveAllowsRegression(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, driverID := assignedBooking(t, env, "rider-1")
	actor := domain.Actor{ID: driverID, Role: domain.RoleDriver}

	_, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingFinished, actor)
	require.NoError(t, err)

	// the default mode accepts any enumerated value, even backwards
	updated, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingDriverPending, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDriverPending, updated.Status)
}

func TestUpdateStatus_StrictMode(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env).WithStrictTransitions()
	b, driverID := assignedBooking(t, env, "rider-1")
	actor := domain.Actor{ID: driverID, Role: domain.RoleDriver}

	updated, err := svc.UpdateStatus(context.Background(), b.ID, domain.BookingOngoing, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingOngoing, updated.Status)

	// skipping ONGOING -> DRIVER_PENDING is an illegal regression
	_, err = svc.UpdateStatus(context.Background(), b.ID, domain.BookingDriverPending, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.UpdateStatus(context.Background(), b.ID, domain.BookingFinished, actor)
	require.NoError(t, err)

	// terminal states never transition further
	_, err = svc.UpdateStatus(context.Background(), b.ID, domain.BookingOngoing, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdatePaymentStatus_BroadcastsEveryCall(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, driverID := assignedBooking(t, env, "rider-1")
	actor := domain.Actor{ID: driverID, Role: domain.RoleDriver}

	for i := 0; i < 2; i++ {
		updated, err := svc.UpdatePaymentStatus(context.Background(), b.ID, domain.PaymentPaid, actor)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	}

	stored, err := env.bookings.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	// repeated values are not deduplicated
	assert.Equal(t, 2, env.notifier.broadcastCount(port.EventPaymentStatusUpdate))
}

func TestUpdatePaymentStatus_RejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, driverID := assignedBooking(t, env, "rider-1")

	_, err := svc.UpdatePaymentStatus(context.Background(), b.ID, domain.PaymentStatus("REFUNDED"), domain.Actor{ID: driverID, Role: domain.RoleDriver})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestCancel_ReleasesAssignedDriver(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, driverID := assignedBooking(t, env, "rider-1")

	cancelled, err := svc.Cancel(context.Background(), b.ID, domain.Actor{ID: "rider-1", Role: domain.RoleUser})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	// payment is untouched by cancellation
	assert.Equal(t, domain.PaymentPending, cancelled.PaymentStatus)

	driver, err := env.drivers.Get(context.Background(), driverID)
	require.NoError(t, err)
	assert.True(t, driver.IsAvailable)
	assert.Equal(t, domain.DriverStatusAvailable, driver.Status)

	assert.Len(t, env.notifier.directedTo(driverID, port.EventRideCancelled), 1)
}

func TestCancel_ForbiddenForOtherUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)
	b, _ := assignedBooking(t, env, "rider-1")

	_, err := svc.Cancel(context.Background(), b.ID, domain.Actor{ID: "rider-2", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancel_UnassignedBookingNeedsNoRelease(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)

	b := env.createBooking(t, "rider-1")
	require.Equal(t, domain.BookingNoDriverAvailable, b.Status)

	cancelled, err := svc.Cancel(context.Background(), b.ID, domain.Actor{ID: "rider-1", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	assert.Empty(t, env.notifier.directed)
}

func TestCancel_NotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := newStatusService(env)

	_, err := svc.Cancel(context.Background(), "missing", domain.Actor{ID: "rider-1", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}
