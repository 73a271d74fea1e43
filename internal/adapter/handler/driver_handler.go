package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
	"github.com/bmkl23/taxi-management-system/internal/core/service"
)

type DriverHandler struct {
	drivers  port.DriverRegistry
	notifier port.Notifier
	auth     *service.AuthService
}

func NewDriverHandler(drivers port.DriverRegistry, notifier port.Notifier, auth *service.AuthService) *DriverHandler {
	return &DriverHandler{drivers: drivers, notifier: notifier, auth: auth}
}

type RegisterDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Mobile        string `json:"mobile" binding:"required"`
	Password      string `json:"password" binding:"required,min=6"`
	VehicleNumber string `json:"vehicle_number" binding:"required"`
}

func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	now := time.Now()
	driver := &domain.Driver{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Mobile:        req.Mobile,
		VehicleNumber: req.VehicleNumber,
		PasswordHash:  hash,
		Role:          domain.RoleDriver,
		Status:        domain.DriverStatusOffline,
		IsAvailable:   false,
		LastSeen:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.drivers.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "driver registered successfully", "driver": driver})
}

func (h *DriverHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driver, err := h.drivers.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !h.auth.CheckPasswordHash(req.Password, driver.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.auth.GenerateToken(driver.ID, driver.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "driver": driver})
}

func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.drivers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

func (h *DriverHandler) Get(c *gin.Context) {
	driverID := c.Param("driverId")
	actor := currentActor(c)
	if actor.Role == domain.RoleDriver && actor.ID != driverID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	driver, err := h.drivers.Get(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

// UpdateAvailability is the driver's own availability toggle; status
// follows the flag and the change is broadcast to everyone.
func (h *DriverHandler) UpdateAvailability(c *gin.Context) {
	driverID := c.Param("driverId")
	if currentActor(c).ID != driverID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isAvailable must be boolean"})
		return
	}

	driver, err := h.drivers.SetAvailability(c.Request.Context(), driverID, *req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.Broadcast(port.EventDriverStatusUpdate, map[string]any{
		"driverId":    driver.ID,
		"status":      driver.Status,
		"isAvailable": driver.IsAvailable,
	})

	c.JSON(http.StatusOK, gin.H{"message": "availability updated successfully", "driver": driver})
}

type UpdateDriverRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Mobile        string `json:"mobile"`
	VehicleNumber string `json:"vehicle_number"`
	Password      string `json:"password"`
}

func (h *DriverHandler) Update(c *gin.Context) {
	driverID := c.Param("driverId")
	actor := currentActor(c)
	if actor.ID != driverID && !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driver, err := h.drivers.Get(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != "" {
		driver.Name = req.Name
	}
	if req.Email != "" {
		driver.Email = req.Email
	}
	if req.Mobile != "" {
		driver.Mobile = req.Mobile
	}
	if req.VehicleNumber != "" {
		driver.VehicleNumber = req.VehicleNumber
	}
	if req.Password != "" {
		hash, err := h.auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		driver.PasswordHash = hash
	}

	if err := h.drivers.Update(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "driver updated", "driver": driver})
}

func (h *DriverHandler) Delete(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admins only"})
		return
	}

	if err := h.drivers.Delete(c.Request.Context(), c.Param("driverId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver deleted successfully"})
}
