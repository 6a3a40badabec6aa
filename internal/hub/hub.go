// Package hub fans live notifications out to connected operator
// sessions.
package hub

import (
	"sync"

	"github.com/MRSt3Ss/rat2/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Notification is one server-to-client message on a live session.
type Notification struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Session is one subscribed operator connection. Notifications are
// delivered through a buffered channel; a session that cannot keep up
// has messages dropped rather than blocking the publisher.
type Session struct {
	ID   string
	send chan Notification
}

// C returns the channel the session's writer drains.
func (s *Session) C() <-chan Notification {
	return s.send
}

// kindEvents maps event kinds to the ungated kind-specific notification
// they trigger for every subscriber, selected device or not. Image
// events are announced separately once the payload has been written to
// the content store.
var kindEvents = map[models.EventKind]string{
	models.EventSMSLog:           "new_sms",
	models.EventCallLog:          "new_call",
	models.EventNotificationData: "new_notification",
	models.EventLocationSuccess:  "location_update",
}

// Hub is the publish/subscribe fan-out for operator sessions.
type Hub struct {
	log    *logrus.Logger
	buffer int

	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

// New creates a Hub whose sessions buffer up to buffer notifications.
func New(log *logrus.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{
		log:      log,
		buffer:   buffer,
		sessions: make(map[*Session]struct{}),
	}
}

// Subscribe registers a new operator session.
func (h *Hub) Subscribe() *Session {
	session := &Session{
		ID:   uuid.New().String(),
		send: make(chan Notification, h.buffer),
	}

	h.mu.Lock()
	h.sessions[session] = struct{}{}
	h.mu.Unlock()

	h.log.WithField("session_id", session.ID).Info("Operator session subscribed")
	return session
}

// Unsubscribe removes a session and closes its channel. Unsubscribing an
// already-removed session is a no-op.
func (h *Hub) Unsubscribe(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[session]; !ok {
		return
	}
	delete(h.sessions, session)
	close(session.send)

	h.log.WithField("session_id", session.ID).Info("Operator session unsubscribed")
}

// Publish routes an ingested event to live sessions. The generic
// device_data notification goes out only when the event's device is the
// current selection; the kind-specific notifications for SMS, call,
// notification, and location events go to every subscriber regardless.
func (h *Hub) Publish(event models.Event, selected bool) {
	if selected {
		h.Broadcast("device_data", event)
	}
	if name, ok := kindEvents[event.Kind]; ok {
		h.Broadcast(name, event.Payload)
	}
}

// Broadcast sends a notification to every subscribed session. Delivery
// to a session that has gone away or filled its buffer is a silent drop.
func (h *Hub) Broadcast(eventName string, data any) {
	notification := Notification{Event: eventName, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for session := range h.sessions {
		select {
		case session.send <- notification:
		default:
			h.log.WithFields(logrus.Fields{
				"session_id": session.ID,
				"event":      eventName,
			}).Debug("Session buffer full, dropping notification")
		}
	}
}

// Send delivers a notification to a single session, silently dropping it
// when the session's buffer is full.
func (h *Hub) Send(session *Session, eventName string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.sessions[session]; !ok {
		return
	}
	select {
	case session.send <- Notification{Event: eventName, Data: data}:
	default:
	}
}

// Count reports the number of subscribed sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}
