// Package billing is the subscription and invoice access layer.
package billing

import (
	"context"
	"time"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/store"
)

// InvoiceTerm is the time between an invoice's issue date and its due date.
const InvoiceTerm = 30 * 24 * time.Hour

// Service forwards subscription and invoice operations to the store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a billing service using the wall clock.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the clock used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetSubscription returns the user's active subscription or nil.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return s.store.GetActiveSubscription(ctx, userID)
}

// CreateSubscription starts an active, auto-renewing subscription.
func (s *Service) CreateSubscription(ctx context.Context, userID, planType string, maxDevices int, price float64) (*model.Subscription, error) {
	ts := s.now()
	return s.store.InsertSubscription(ctx, &model.Subscription{
		UserID:     userID,
		PlanType:   planType,
		MaxDevices: maxDevices,
		Price:      price,
		Status:     model.SubscriptionActive,
		AutoRenew:  true,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	})
}

// UpgradeSubscription replaces the plan, device cap and price.
func (s *Service) UpgradeSubscription(ctx context.Context, id, plan string, maxDevices int, price float64) (*model.Subscription, error) {
	return s.store.UpdateSubscription(ctx, id, map[string]any{
		"plan_type":   plan,
		"max_devices": maxDevices,
		"price":       price,
		"updated_at":  s.now(),
	})
}

// CancelSubscription marks the subscription cancelled and turns off auto-renew.
func (s *Service) CancelSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	return s.store.UpdateSubscription(ctx, id, map[string]any{
		"status":     model.SubscriptionCancelled,
		"auto_renew": false,
		"updated_at": s.now(),
	})
}

// GetInvoices returns the user's invoices, most recently issued first.
func (s *Service) GetInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	return s.store.ListInvoicesByUser(ctx, userID)
}

// CreateInvoice issues a pending invoice due InvoiceTerm after today.
func (s *Service) CreateInvoice(ctx context.Context, userID string, amount float64, subscriptionID *string) (*model.Invoice, error) {
	issued := s.now()
	return s.store.InsertInvoice(ctx, &model.Invoice{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Status:         model.InvoicePending,
		IssueDate:      issued,
		DueDate:        issued.Add(InvoiceTerm),
		CreatedAt:      issued,
	})
}

// MarkInvoiceAsPaid settles the invoice. Calling it on a paid invoice returns
// the invoice unchanged.
func (s *Service) MarkInvoiceAsPaid(ctx context.Context, id string) (*model.Invoice, error) {
	return s.store.MarkInvoicePaid(ctx, id, s.now())
}
