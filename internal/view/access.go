package view

import (
	"context"

	"mikrotik-manager/internal/auth"
	"mikrotik-manager/internal/model"
)

// DeviceAccess is the part of the device service the views use.
type DeviceAccess interface {
	GetDevices(ctx context.Context, ownerID string) ([]model.Device, error)
	AddDevice(ctx context.Context, draft model.DeviceDraft, ownerID string) (*model.Device, error)
	DeleteDevice(ctx context.Context, id string) error
	AddDeviceLog(ctx context.Context, id, action, details string) (*model.DeviceLog, error)
}

// BillingAccess is the part of the billing service the views use.
type BillingAccess interface {
	GetSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	GetInvoices(ctx context.Context, userID string) ([]model.Invoice, error)
	MarkInvoiceAsPaid(ctx context.Context, id string) (*model.Invoice, error)
}

// AuthGateway is the part of the auth gateway the session controller uses.
type AuthGateway interface {
	GetSession(ctx context.Context, accessToken string) (*auth.Session, error)
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, session *auth.Session) error
	CreateUserProfile(ctx context.Context, userID, email, fullName string) (*model.User, error)
}
