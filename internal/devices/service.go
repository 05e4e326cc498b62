// Package devices is the device access layer: CRUD, health snapshots and the
// append-only device log, each call forwarded to the store as one request.
package devices

import (
	"context"
	"time"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/parse"
	"mikrotik-manager/internal/store"
)

// Service forwards device operations to the store and stamps timestamps.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a device service using the wall clock.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the clock used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddDevice creates a device owned by ownerID. New devices start offline.
func (s *Service) AddDevice(ctx context.Context, draft model.DeviceDraft, ownerID string) (*model.Device, error) {
	ts := s.now()
	return s.store.InsertDevice(ctx, &model.Device{
		OwnerID:   ownerID,
		Name:      draft.Name,
		IPAddress: draft.IPAddress,
		Identity:  draft.Identity,
		Model:     draft.Model,
		Location:  draft.Location,
		Status:    model.DeviceOffline,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
}

// GetDevices returns the owner's devices, newest first.
func (s *Service) GetDevices(ctx context.Context, ownerID string) ([]model.Device, error) {
	return s.store.ListDevicesByOwner(ctx, ownerID)
}

// GetDevice returns the device or nil when it does not exist.
func (s *Service) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	return s.store.GetDevice(ctx, id)
}

// UpdateDevice applies the non-nil fields of update and stamps updated_at.
func (s *Service) UpdateDevice(ctx context.Context, id string, update model.DeviceUpdate) (*model.Device, error) {
	cols := update.Columns()
	cols["updated_at"] = s.now()
	return s.store.UpdateDevice(ctx, id, cols)
}

func (s *Service) DeleteDevice(ctx context.Context, id string) error {
	return s.store.DeleteDevice(ctx, id)
}

// GetDeviceStatus returns the latest snapshot or nil when none was recorded.
func (s *Service) GetDeviceStatus(ctx context.Context, id string) (*model.DeviceStatus, error) {
	return s.store.GetDeviceStatus(ctx, id)
}

// UpdateDeviceStatus creates or replaces the snapshot for the device and stamps last_updated.
func (s *Service) UpdateDeviceStatus(ctx context.Context, id string, snapshot model.DeviceStatus) (*model.DeviceStatus, error) {
	snapshot.DeviceID = id
	snapshot.LastUpdated = s.now()
	if snapshot.Status == "" {
		snapshot.Status = model.DeviceOffline
	}
	return s.store.UpsertDeviceStatus(ctx, &snapshot)
}

// AddDeviceLog appends an entry to the device's log.
func (s *Service) AddDeviceLog(ctx context.Context, id, action, details string) (*model.DeviceLog, error) {
	return s.store.InsertDeviceLog(ctx, &model.DeviceLog{
		DeviceID:  id,
		Action:    action,
		Details:   details,
		CreatedAt: s.now(),
	})
}

// GetDeviceLogs returns up to limit entries, newest first. A non-positive
// limit means the default of 100.
func (s *Service) GetDeviceLogs(ctx context.Context, id string, limit int) ([]model.DeviceLog, error) {
	if limit <= 0 {
		limit = parse.DefaultLogLimit
	}
	return s.store.ListDeviceLogs(ctx, id, limit)
}
