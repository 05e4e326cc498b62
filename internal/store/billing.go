package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mikrotik-manager/internal/model"
)

// GetActiveSubscription returns the user's active subscription, or nil when none
// exists. If several are active the newest one wins.
func (s *gormStore) GetActiveSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	var sub model.Subscription
	found, err := findOne(s.db.WithContext(ctx).Order("created_at DESC"), &sub,
		"user_id = ? AND status = ?", userID, model.SubscriptionActive)
	if err != nil {
		return nil, wrap("get subscription", err)
	}
	if !found {
		return nil, nil
	}
	return &sub, nil
}

// GetSubscription returns the subscription with the given id in any status,
// or nil when it does not exist.
func (s *gormStore) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	var sub model.Subscription
	found, err := findOne(s.db.WithContext(ctx), &sub, "id = ?", id)
	if err != nil {
		return nil, wrap("get subscription", err)
	}
	if !found {
		return nil, nil
	}
	return &sub, nil
}

func (s *gormStore) InsertSubscription(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, wrap("insert subscription", err)
	}
	return sub, nil
}

func (s *gormStore) UpdateSubscription(ctx context.Context, id string, columns map[string]any) (*model.Subscription, error) {
	var sub model.Subscription
	if err := s.updateByID(ctx, &sub, id, columns); err != nil {
		return nil, wrap("update subscription", err)
	}
	return &sub, nil
}

// ListInvoicesByUser returns the user's invoices, most recently issued first.
func (s *gormStore) ListInvoicesByUser(ctx context.Context, userID string) ([]model.Invoice, error) {
	invoices := []model.Invoice{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issue_date DESC").
		Find(&invoices).Error; err != nil {
		return nil, wrap("list invoices", err)
	}
	return invoices, nil
}

func (s *gormStore) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	found, err := findOne(s.db.WithContext(ctx), &invoice, "id = ?", id)
	if err != nil {
		return nil, wrap("get invoice", err)
	}
	if !found {
		return nil, nil
	}
	return &invoice, nil
}

func (s *gormStore) InsertInvoice(ctx context.Context, invoice *model.Invoice) (*model.Invoice, error) {
	if err := s.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, wrap("insert invoice", err)
	}
	return invoice, nil
}

// MarkInvoicePaid moves a pending invoice to paid. An invoice that is already
// paid keeps its original paid date.
func (s *gormStore) MarkInvoicePaid(ctx context.Context, id string, paidAt time.Time) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Invoice{}).
			Where("id = ? AND status <> ?", id, model.InvoicePaid).
			Updates(map[string]any{"status": model.InvoicePaid, "paid_date": paidAt}).Error; err != nil {
			return err
		}
		err := tx.Where("id = ?", id).Take(&invoice).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, wrap("mark invoice paid", err)
	}
	return &invoice, nil
}
