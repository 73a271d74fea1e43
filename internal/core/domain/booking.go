package domain

import "time"

type BookingStatus string

const (
	BookingDriverPending     BookingStatus = "DRIVER_PENDING"
	BookingDriverAssigned    BookingStatus = "DRIVER_ASSIGNED"
	BookingNoDriverAvailable BookingStatus = "NO_DRIVER_AVAILABLE"
	BookingOngoing           BookingStatus = "ONGOING"
	BookingFinished          BookingStatus = "FINISHED"
	BookingCancelled         BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user"`
	Pickup         string        `json:"pickup"`
	Drop           string        `json:"drop"`
	DistanceKm     float64       `json:"distance_km"`
	TimeMinutes    float64       `json:"time_minutes"`
	EstimatedFare  float64       `json:"estimated_fare"`
	Status         BookingStatus `json:"status"`
	AssignedDriver *string       `json:"assigned_driver"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingDriverPending, BookingDriverAssigned, BookingNoDriverAvailable,
		BookingOngoing, BookingFinished, BookingCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	return s == PaymentPending || s == PaymentPaid
}

func (s BookingStatus) Terminal() bool {
	return s == BookingFinished || s == BookingCancelled
}

// AllowedTransitions is the booking state flow enforced in strict mode.
// The default mode accepts any enumerated status from an authorized actor,
// which matches how the platform has always behaved.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	BookingDriverPending:     {BookingDriverAssigned, BookingNoDriverAvailable, BookingCancelled},
	BookingDriverAssigned:    {BookingOngoing, BookingCancelled},
	BookingNoDriverAvailable: {BookingDriverPending, BookingCancelled},
	BookingOngoing:           {BookingFinished, BookingCancelled},
}

func CanTransition(from, to BookingStatus) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
