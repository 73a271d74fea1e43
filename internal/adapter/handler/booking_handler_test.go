package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bmkl23/taxi-management-system/internal/adapter/storage/memory"
	"github.com/bmkl23/taxi-management-system/internal/adapter/websocket"
	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/service"
	"github.com/bmkl23/taxi-management-system/internal/core/service/pricing"
)

type testServer struct {
	router   *gin.Engine
	auth     *service.AuthService
	bookings *memory.BookingStore
	drivers  *memory.DriverStore
	presence *memory.Presence
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	presence := memory.NewPresence()
	bookings := memory.NewBookingStore()
	drivers := memory.NewDriverStore(presence)
	users := memory.NewUserStore()

	hub := websocket.NewHub(drivers, presence, log)
	auth := service.NewAuthService("test-secret")

	dispatch := service.NewDispatchService(bookings, drivers, hub, pricing.NewStandardStrategy(), log)
	hub.SetService(dispatch)
	status := service.NewStatusService(bookings, drivers, hub, log)

	router := gin.New()
	RegisterRoutes(router, auth,
		NewUserHandler(users, auth),
		NewDriverHandler(drivers, hub, auth),
		NewBookingHandler(dispatch, status, bookings, drivers),
		hub)

	return &testServer{router: router, auth: auth, bookings: bookings, drivers: drivers, presence: presence}
}

func (s *testServer) token(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	tok, err := s.auth.GenerateToken(id, role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedOnlineDriver(t *testing.T) string {
	t.Helper()
	d := &domain.Driver{
		ID:          uuid.NewString(),
		Name:        "cab one",
		Email:       uuid.NewString() + "@cabs.test",
		Role:        domain.RoleDriver,
		Status:      domain.DriverStatusAvailable,
		IsAvailable: true,
		LastSeen:    time.Now(),
	}
	require.NoError(t, s.drivers.Create(context.Background(), d))
	require.NoError(t, s.presence.Track(context.Background(), d.ID, d.LastSeen))
	return d.ID
}

var createBody = gin.H{
	"startLocation": "Airport",
	"endLocation":   "Harbour",
	"distance":      10,
	"estimatedTime": 20,
}

func TestCreateBooking_RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/bookings", "", createBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBooking_NoDriversOnline(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", token, createBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		BookingID string          `json:"bookingId"`
		Status    string          `json:"status"`
		Booking   *domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BookingID)
	assert.Equal(t, string(domain.BookingNoDriverAvailable), resp.Status)
	assert.Equal(t, float64(240), resp.Booking.EstimatedFare)
}

func TestCreateBooking_OffersToOnlineDriver(t *testing.T) {
	s := newTestServer(t)
	driverID := s.seedOnlineDriver(t)
	token := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", token, createBody)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Booking *domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.BookingDriverPending), string(resp.Booking.Status))
	require.NotNil(t, resp.Booking.AssignedDriver)
	assert.Equal(t, driverID, *resp.Booking.AssignedDriver)
}

func TestCreateBooking_RejectsMissingFields(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", token, gin.H{"startLocation": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBooking_HiddenFromStrangers(t *testing.T) {
	s := newTestServer(t)
	riderToken := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", riderToken, createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		BookingID string `json:"bookingId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(t, http.MethodGet, "/api/bookings/"+created.BookingID, riderToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	strangerToken := s.token(t, "rider-2", domain.RoleUser)
	w = s.do(t, http.MethodGet, "/api/bookings/"+created.BookingID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := s.token(t, "admin-1", domain.RoleAdmin)
	w = s.do(t, http.MethodGet, "/api/bookings/"+created.BookingID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBooking_NotFound(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodGet, "/api/bookings/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListAll_ForbiddenForRiders(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/bookings/admin/all", s.token(t, "rider-1", domain.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings/admin/all", s.token(t, "admin-1", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateStatus_RiderMayNotDriveBooking(t *testing.T) {
	s := newTestServer(t)
	driverID := s.seedOnlineDriver(t)
	riderToken := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", riderToken, createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		BookingID string `json:"bookingId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.BookingID+"/status", riderToken, gin.H{"status": "ONGOING"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	driverToken := s.token(t, driverID, domain.RoleDriver)
	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.BookingID+"/status", driverToken, gin.H{"status": "ONGOING"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.BookingID+"/status", driverToken, gin.H{"status": "WARPED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelBooking_ByRider(t *testing.T) {
	s := newTestServer(t)
	riderToken := s.token(t, "rider-1", domain.RoleUser)

	w := s.do(t, http.MethodPost, "/api/bookings", riderToken, createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		BookingID string `json:"bookingId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.BookingID+"/cancel", riderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	b, err := s.bookings.Get(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
}

func TestHistory_ScopedToRider(t *testing.T) {
	s := newTestServer(t)
	riderToken := s.token(t, "rider-1", domain.RoleUser)

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/api/bookings", riderToken, createBody)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := s.do(t, http.MethodPost, "/api/bookings", s.token(t, "rider-2", domain.RoleUser), createBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings/history/all", riderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var mine []domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, "rider-1", b.UserID)
	}
}
