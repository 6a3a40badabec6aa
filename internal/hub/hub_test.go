package hub

import (
	"io"
	"testing"

	"github.com/MRSt3Ss/rat2/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func drain(session *Session) []Notification {
	var notifications []Notification
	for {
		select {
		case n := <-session.send:
			notifications = append(notifications, n)
		default:
			return notifications
		}
	}
}

func TestPublishSelectedDeviceGetsGenericNotification(t *testing.T) {
	h := New(testLogger(), 8)
	session := h.Subscribe()

	event := models.Event{Kind: models.EventAppList, Payload: map[string]any{"apps": []any{}}}
	h.Publish(event, true)

	notifications := drain(session)
	require.Len(t, notifications, 1)
	require.Equal(t, "device_data", notifications[0].Event)
}

func TestPublishUnselectedDeviceSkipsGenericNotification(t *testing.T) {
	h := New(testLogger(), 8)
	session := h.Subscribe()

	event := models.Event{Kind: models.EventAppList, Payload: map[string]any{}}
	h.Publish(event, false)

	require.Empty(t, drain(session))
}

func TestPublishSMSNotificationIsUngated(t *testing.T) {
	h := New(testLogger(), 8)
	session := h.Subscribe()

	payload := map[string]any{"from": "+123", "body": "hello"}
	event := models.Event{Kind: models.EventSMSLog, Payload: payload}

	// Not selected: kind-specific notification still goes out.
	h.Publish(event, false)
	notifications := drain(session)
	require.Len(t, notifications, 1)
	require.Equal(t, "new_sms", notifications[0].Event)

	// Selected: both generic and kind-specific.
	h.Publish(event, true)
	notifications = drain(session)
	require.Len(t, notifications, 2)
	require.Equal(t, "device_data", notifications[0].Event)
	require.Equal(t, "new_sms", notifications[1].Event)
}

func TestBroadcastReachesAllSessions(t *testing.T) {
	h := New(testLogger(), 8)
	first := h.Subscribe()
	second := h.Subscribe()
	require.Equal(t, 2, h.Count())

	h.Broadcast("device_connected", map[string]any{"id": "dev-1"})

	require.Len(t, drain(first), 1)
	require.Len(t, drain(second), 1)
}

func TestUnsubscribedSessionIsSkipped(t *testing.T) {
	h := New(testLogger(), 8)
	session := h.Subscribe()
	h.Unsubscribe(session)
	require.Equal(t, 0, h.Count())

	// Publishing after unsubscribe must not panic or deliver.
	h.Broadcast("device_connected", nil)
	h.Send(session, "connected", nil)

	// Double unsubscribe is a no-op.
	h.Unsubscribe(session)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := New(testLogger(), 2)
	session := h.Subscribe()

	for i := 0; i < 10; i++ {
		h.Broadcast("location_update", i)
	}

	require.Len(t, drain(session), 2)
}

func TestSendTargetsSingleSession(t *testing.T) {
	h := New(testLogger(), 8)
	first := h.Subscribe()
	second := h.Subscribe()

	h.Send(first, "devices_list", []any{})

	require.Len(t, drain(first), 1)
	require.Empty(t, drain(second))
}
