package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
	"github.com/bmkl23/taxi-management-system/internal/core/service"
)

type BookingHandler struct {
	dispatch *service.DispatchService
	status   *service.StatusService
	bookings port.BookingStore
	drivers  port.DriverRegistry
}

func NewBookingHandler(dispatch *service.DispatchService, status *service.StatusService, bookings port.BookingStore, drivers port.DriverRegistry) *BookingHandler {
	return &BookingHandler{dispatch: dispatch, status: status, bookings: bookings, drivers: drivers}
}

type CreateBookingRequest struct {
	StartLocation string  `json:"startLocation" binding:"required"`
	EndLocation   string  `json:"endLocation" binding:"required"`
	Distance      float64 `json:"distance" binding:"required,gt=0"`
	EstimatedTime float64 `json:"estimatedTime" binding:"required,gt=0"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := currentActor(c)
	booking, err := h.dispatch.CreateBooking(c.Request.Context(), actor.ID, service.CreateBookingInput{
		Pickup:      req.StartLocation,
		Drop:        req.EndLocation,
		DistanceKm:  req.Distance,
		TimeMinutes: req.EstimatedTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "booking submitted successfully",
		"bookingId": booking.ID,
		"status":    booking.Status,
		"booking":   booking,
	})
}

func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	actor := currentActor(c)
	isPassenger := booking.UserID == actor.ID
	isAssignedDriver := booking.AssignedDriver != nil && *booking.AssignedDriver == actor.ID
	if !isPassenger && !isAssignedDriver && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied to this booking"})
		return
	}

	resp := gin.H{"booking": booking, "status": booking.Status}
	if booking.AssignedDriver != nil {
		if driver, err := h.drivers.Get(c.Request.Context(), *booking.AssignedDriver); err == nil {
			resp["assignedDriver"] = driver
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) History(c *gin.Context) {
	bookings, err := h.bookings.ListByRider(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) AdminListAll(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admins only"})
		return
	}

	bookings, err := h.bookings.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.status.Cancel(c.Request.Context(), c.Param("bookingId"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled successfully", "booking": booking})
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.status.UpdateStatus(c.Request.Context(), c.Param("bookingId"),
		domain.BookingStatus(req.Status), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking status updated", "booking": booking})
}

type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func (h *BookingHandler) UpdatePayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.status.UpdatePaymentStatus(c.Request.Context(), c.Param("bookingId"),
		domain.PaymentStatus(req.PaymentStatus), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment status updated", "booking": booking})
}
