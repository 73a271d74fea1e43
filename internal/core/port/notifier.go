package port

// Event names on the rider/driver/admin real-time channel.
const (
	EventNewRideRequest      = "new_ride_request"
	EventBookingConfirmed    = "booking_confirmed"
	EventRideCancelled       = "ride_cancelled"
	EventBookingStatusUpdate = "booking_status_update"
	EventDriverStatusUpdate  = "driver_status_update"
	EventPaymentStatusUpdate = "payment_status_update"
)

// Notifier is the real-time channel between the core and connected
// clients. SendToUser reports whether a live connection for the
// recipient existed at send time; a miss is not an error, the caller
// decides whether it matters.
type Notifier interface {
	SendToUser(userID string, event string, payload any) bool
	Broadcast(event string, payload any)
}
