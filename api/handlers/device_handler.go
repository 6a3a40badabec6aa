package handlers

import (
	"errors"
	"net/http"

	"github.com/MRSt3Ss/rat2/internal/models"
	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DeviceHandler handles device listing, selection, and info requests
type DeviceHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewDeviceHandler creates a new DeviceHandler instance
func NewDeviceHandler(svc service.Service, log *logrus.Logger) *DeviceHandler {
	return &DeviceHandler{
		service: svc,
		log:     log,
	}
}

// ListDevices returns every registered device.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices := h.service.ListDevices(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// SelectDevice sets the device targeted by subsequent commands and the
// live feed.
func (h *DeviceHandler) SelectDevice(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request format",
		})
		return
	}

	device, err := h.service.SelectDevice(c.Request.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Device not found",
			})
			return
		}
		h.log.WithError(err).Error("Failed to select device")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to select device",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"device": device,
	})
}

// DeviceInfo returns the currently selected device.
func (h *DeviceHandler) DeviceInfo(c *gin.Context) {
	device, err := h.service.SelectedDevice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "No device selected",
		})
		return
	}

	c.JSON(http.StatusOK, device)
}

// QueueStats returns dispatcher and session statistics.
func (h *DeviceHandler) QueueStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  h.service.QueueStats(),
	})
}
