package domain

import "time"

type Role string

const (
	RoleUser   Role = "USER"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusBusy      DriverStatus = "BUSY"
	DriverStatusOffline   DriverStatus = "OFFLINE"
)

type Driver struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Mobile        string       `json:"mobile"`
	VehicleNumber string       `json:"vehicle_number"`
	PasswordHash  string       `json:"-"`
	Role          Role         `json:"role"`
	Status        DriverStatus `json:"status"`
	IsAvailable   bool         `json:"isAvailable"`
	LastSeen      time.Time    `json:"lastSeen"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// CanTakeRide reports whether the driver is eligible for a new offer.
// Reachability is a separate predicate owned by the presence layer.
func (d *Driver) CanTakeRide() bool {
	return d.IsAvailable && d.Status == DriverStatusAvailable
}
