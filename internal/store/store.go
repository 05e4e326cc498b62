package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mikrotik-manager/internal/model"
)

// ErrNotFound is returned when a write or single-row read targets a missing record.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations. Every method is a
// single request against the backing database; multi-statement methods run in
// a transaction so they apply fully or not at all.
type Store interface {
	// identities
	CreateIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, id string) (*model.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)

	// users
	InsertUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, columns map[string]any) (*model.User, error)

	// devices
	InsertDevice(ctx context.Context, device *model.Device) (*model.Device, error)
	ListDevicesByOwner(ctx context.Context, ownerID string) ([]model.Device, error)
	ListAllDevices(ctx context.Context) ([]model.Device, error)
	GetDevice(ctx context.Context, id string) (*model.Device, error)
	UpdateDevice(ctx context.Context, id string, columns map[string]any) (*model.Device, error)
	DeleteDevice(ctx context.Context, id string) error

	// device_status
	GetDeviceStatus(ctx context.Context, deviceID string) (*model.DeviceStatus, error)
	UpsertDeviceStatus(ctx context.Context, status *model.DeviceStatus) (*model.DeviceStatus, error)

	// device_logs
	InsertDeviceLog(ctx context.Context, entry *model.DeviceLog) (*model.DeviceLog, error)
	ListDeviceLogs(ctx context.Context, deviceID string, limit int) ([]model.DeviceLog, error)

	// subscriptions
	GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*model.Subscription, error)
	InsertSubscription(ctx context.Context, sub *model.Subscription) (*model.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, columns map[string]any) (*model.Subscription, error)

	// invoices
	ListInvoicesByUser(ctx context.Context, userID string) ([]model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	InsertInvoice(ctx context.Context, invoice *model.Invoice) (*model.Invoice, error)
	MarkInvoicePaid(ctx context.Context, id string, paidAt time.Time) (*model.Invoice, error)

	// push_subscriptions
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	ListPushSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// findOne loads a single row into dest and reports whether it existed.
func findOne(tx *gorm.DB, dest any, query string, args ...any) (bool, error) {
	err := tx.Where(query, args...).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateByID applies columns to the row with the given id and reloads it into dest.
func (s *gormStore) updateByID(ctx context.Context, dest any, id string, columns map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(dest).Where("id = ?", id).Updates(columns)
		if res.Error != nil {
			return res.Error
		}
		found, err := findOne(tx, dest, "id = ?", id)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return nil
	})
}

func wrap(action string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
