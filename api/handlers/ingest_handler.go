package handlers

import (
	"errors"
	"net/http"

	"github.com/MRSt3Ss/rat2/internal/models"
	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IngestHandler receives event records pushed by the upstream agent
// relay.
type IngestHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewIngestHandler creates a new IngestHandler instance
func NewIngestHandler(svc service.Service, log *logrus.Logger) *IngestHandler {
	return &IngestHandler{
		service: svc,
		log:     log,
	}
}

// ReceiveData handles one inbound agent event. A malformed body is
// acknowledged with a failure so the sender can retry or drop; it never
// affects other devices.
func (h *IngestHandler) ReceiveData(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(err).Warn("Invalid ingestion payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid payload format",
		})
		return
	}

	if err := h.service.IngestEvent(c.Request.Context(), req); err != nil {
		if errors.Is(err, models.ErrMalformedInput) {
			h.log.WithError(err).Warn("Malformed ingestion payload")
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		h.log.WithError(err).Error("Failed to ingest event")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to ingest event",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
