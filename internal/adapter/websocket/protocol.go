package websocket

import "encoding/json"

// Client-to-server events. Server-to-client event names live in the
// port package because the core services emit them.
const (
	MsgDriverOnline  = "driver_online"
	MsgUserConnect   = "user_connect"
	MsgAcceptBooking = "accept_booking"
	MsgRejectBooking = "reject_booking"

	// MsgDispatchAck answers accept/reject so the driver client knows
	// whether its decision applied.
	MsgDispatchAck = "dispatch_ack"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type DriverOnlinePayload struct {
	DriverID string `json:"driverId"`
}

type UserConnectPayload struct {
	UserID string `json:"userId"`
}

type BookingActionPayload struct {
	BookingID string `json:"bookingId"`
	DriverID  string `json:"driverId"`
}

type DispatchAckPayload struct {
	BookingID string `json:"bookingId"`
	Action    string `json:"action"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}
