package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bmkl23/taxi-management-system/internal/core/port"
	"github.com/bmkl23/taxi-management-system/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin before exposing publicly
		return true
	},
}

// DispatchLogic is what the hub needs from the dispatcher to route
// driver decisions coming in over the socket.
type DispatchLogic interface {
	Accept(ctx context.Context, bookingID, driverID string) error
	Reject(ctx context.Context, bookingID, driverID string) error
}

// Hub owns every live connection and the user-id to connection map.
// It is the platform's notification channel: directed sends and
// broadcasts both go through it.
type Hub struct {
	svc      DispatchLogic
	drivers  port.DriverRegistry
	presence port.Presence
	log      *zap.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*Client]bool
	byUser  map[string]*Client
}

func NewHub(drivers port.DriverRegistry, presence port.Presence, log *zap.Logger) *Hub {
	return &Hub{
		drivers:    drivers,
		presence:   presence,
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]*Client),
	}
}

// SetService wires the dispatcher in after construction; the dispatcher
// itself needs the hub as its notifier.
func (h *Hub) SetService(svc DispatchLogic) {
	h.svc = svc
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.drop(client)
		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	if client.userID != "" && h.byUser[client.userID] == client {
		delete(h.byUser, client.userID)
	}
	close(client.send)
	h.mu.Unlock()

	// A dropped driver connection removes the driver from dispatch
	// candidacy; its availability flags are left alone.
	if client.isDriver && client.userID != "" {
		if err := h.presence.Remove(context.Background(), client.userID); err != nil {
			h.log.Warn("presence cleanup failed", zap.String("driverId", client.userID), zap.Error(err))
		}
		observability.DriversOnline.Dec()
	}
}

func (h *Hub) HandleMessage(client *Client, message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		h.log.Warn("invalid websocket frame", zap.Error(err))
		return
	}

	ctx := context.Background()

	switch env.Event {
	case MsgDriverOnline:
		var p DriverOnlinePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.DriverID == "" {
			return
		}
		h.bind(client, p.DriverID, true)

		if err := h.presence.Track(ctx, p.DriverID, time.Now()); err != nil {
			h.log.Error("presence track failed", zap.String("driverId", p.DriverID), zap.Error(err))
		}
		observability.DriversOnline.Inc()

		driver, err := h.drivers.SetAvailability(ctx, p.DriverID, true)
		if err != nil {
			h.log.Error("driver_online update failed", zap.String("driverId", p.DriverID), zap.Error(err))
			return
		}
		h.Broadcast(port.EventDriverStatusUpdate, map[string]any{
			"driverId":    driver.ID,
			"status":      driver.Status,
			"isAvailable": driver.IsAvailable,
		})

	case MsgUserConnect:
		var p UserConnectPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.UserID == "" {
			return
		}
		h.bind(client, p.UserID, false)

	case MsgAcceptBooking:
		var p BookingActionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		err := h.svc.Accept(ctx, p.BookingID, p.DriverID)
		h.ack(client, p.BookingID, "ACCEPT", err)

	case MsgRejectBooking:
		var p BookingActionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		err := h.svc.Reject(ctx, p.BookingID, p.DriverID)
		h.ack(client, p.BookingID, "REJECT", err)
	}
}

// heartbeat refreshes a driver's last-seen on every pong so candidate
// ordering tracks liveness, not just the initial driver_online.
func (h *Hub) heartbeat(client *Client) {
	if !client.isDriver || client.userID == "" {
		return
	}
	ctx := context.Background()
	if err := h.presence.Track(ctx, client.userID, time.Now()); err != nil {
		h.log.Warn("presence refresh failed", zap.String("driverId", client.userID), zap.Error(err))
	}
	if err := h.drivers.Touch(ctx, client.userID); err != nil {
		h.log.Warn("last-seen refresh failed", zap.String("driverId", client.userID), zap.Error(err))
	}
}

func (h *Hub) bind(client *Client, userID string, isDriver bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.userID = userID
	client.isDriver = isDriver
	h.byUser[userID] = client
}

func (h *Hub) ack(client *Client, bookingID, action string, err error) {
	p := DispatchAckPayload{BookingID: bookingID, Action: action, OK: err == nil}
	if err != nil {
		h.log.Warn("booking action failed",
			zap.String("bookingId", bookingID), zap.String("action", action), zap.Error(err))
		p.Error = err.Error()
	}
	h.push(client, MsgDispatchAck, p)
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	msg, err := json.Marshal(map[string]any{"event": event, "data": payload})
	if err != nil {
		h.log.Error("marshal failed", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	return msg, true
}

// sendLocked queues msg on the client. Callers must hold h.mu: drop
// closes the send channel under the write lock after removing the
// client from the map, so the membership check here is what keeps a
// racing send off a closed channel.
func (h *Hub) sendLocked(client *Client, msg []byte) bool {
	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) push(client *Client, event string, payload any) bool {
	msg, ok := h.encode(event, payload)
	if !ok {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sendLocked(client, msg)
}

// SendToUser implements port.Notifier. The lookup and the send happen
// under one read lock so a concurrent disconnect cannot close the
// channel in between.
func (h *Hub) SendToUser(userID string, event string, payload any) bool {
	msg, ok := h.encode(event, payload)
	if !ok {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.byUser[userID]
	if !ok {
		return false
	}
	return h.sendLocked(client, msg)
}

// Broadcast implements port.Notifier.
func (h *Hub) Broadcast(event string, payload any) {
	msg, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.broadcast <- msg
}

// ServeWS upgrades an HTTP request to a websocket session.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 32),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

var _ port.Notifier = (*Hub)(nil)
