package view

import (
	"context"

	"mikrotik-manager/internal/model"
)

// stubAccess lets a test fail individual calls.
type stubAccess struct {
	devices []model.Device
	sub     *model.Subscription
	inv     []model.Invoice

	devicesErr error
	subErr     error
	invErr     error
	addErr     error
	logErr     error
	deleteErr  error
	payErr     error

	added   int
	deleted []string
}

func (s *stubAccess) GetDevices(ctx context.Context, ownerID string) ([]model.Device, error) {
	return s.devices, s.devicesErr
}

func (s *stubAccess) AddDevice(ctx context.Context, draft model.DeviceDraft, ownerID string) (*model.Device, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.added++
	return &model.Device{ID: "dev-new", OwnerID: ownerID, Name: draft.Name, IPAddress: draft.IPAddress, Status: model.DeviceOffline}, nil
}

func (s *stubAccess) DeleteDevice(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubAccess) AddDeviceLog(ctx context.Context, id, action, details string) (*model.DeviceLog, error) {
	if s.logErr != nil {
		return nil, s.logErr
	}
	return &model.DeviceLog{DeviceID: id, Action: action, Details: details}, nil
}

func (s *stubAccess) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return s.sub, s.subErr
}

func (s *stubAccess) GetInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	return s.inv, s.invErr
}

func (s *stubAccess) MarkInvoiceAsPaid(ctx context.Context, id string) (*model.Invoice, error) {
	if s.payErr != nil {
		return nil, s.payErr
	}
	for i := range s.inv {
		if s.inv[i].ID == id {
			s.inv[i].Status = model.InvoicePaid
			return &s.inv[i], nil
		}
	}
	return nil, nil
}
