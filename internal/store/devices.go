package store

import (
	"context"

	"gorm.io/gorm/clause"

	"mikrotik-manager/internal/model"
)

func (s *gormStore) InsertDevice(ctx context.Context, device *model.Device) (*model.Device, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(device).Error; err != nil {
		return nil, wrap("insert device", err)
	}
	return device, nil
}

// ListDevicesByOwner returns the owner's devices, newest first.
func (s *gormStore) ListDevicesByOwner(ctx context.Context, ownerID string) ([]model.Device, error) {
	devices := []model.Device{}
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&devices).Error; err != nil {
		return nil, wrap("list devices", err)
	}
	return devices, nil
}

func (s *gormStore) ListAllDevices(ctx context.Context) ([]model.Device, error) {
	devices := []model.Device{}
	if err := s.db.WithContext(ctx).Order("created_at").Find(&devices).Error; err != nil {
		return nil, wrap("list all devices", err)
	}
	return devices, nil
}

func (s *gormStore) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	var device model.Device
	found, err := findOne(s.db.WithContext(ctx), &device, "id = ?", id)
	if err != nil {
		return nil, wrap("get device", err)
	}
	if !found {
		return nil, nil
	}
	return &device, nil
}

func (s *gormStore) UpdateDevice(ctx context.Context, id string, columns map[string]any) (*model.Device, error) {
	var device model.Device
	if err := s.updateByID(ctx, &device, id, columns); err != nil {
		return nil, wrap("update device", err)
	}
	return &device, nil
}

// DeleteDevice removes the device row. Deleting a missing id is not an error.
func (s *gormStore) DeleteDevice(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Device{}).Error; err != nil {
		return wrap("delete device", err)
	}
	return nil
}

func (s *gormStore) GetDeviceStatus(ctx context.Context, deviceID string) (*model.DeviceStatus, error) {
	var status model.DeviceStatus
	found, err := findOne(s.db.WithContext(ctx), &status, "device_id = ?", deviceID)
	if err != nil {
		return nil, wrap("get device status", err)
	}
	if !found {
		return nil, nil
	}
	return &status, nil
}

// UpsertDeviceStatus creates the snapshot or replaces every column of the existing one.
func (s *gormStore) UpsertDeviceStatus(ctx context.Context, status *model.DeviceStatus) (*model.DeviceStatus, error) {
	if err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			UpdateAll: true,
		}).
		Create(status).Error; err != nil {
		return nil, wrap("upsert device status", err)
	}
	return status, nil
}

func (s *gormStore) InsertDeviceLog(ctx context.Context, entry *model.DeviceLog) (*model.DeviceLog, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return nil, wrap("insert device log", err)
	}
	return entry, nil
}

// ListDeviceLogs returns at most limit entries for the device, newest first.
func (s *gormStore) ListDeviceLogs(ctx context.Context, deviceID string, limit int) ([]model.DeviceLog, error) {
	logs := []model.DeviceLog{}
	if err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, wrap("list device logs", err)
	}
	return logs, nil
}
