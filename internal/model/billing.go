package model

import "time"

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// Invoice statuses. Other values may exist in the store and are treated as unpaid.
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
)

// Subscription is a user's billing plan. At most one is expected to be active.
type Subscription struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"index;size:36;not null" json:"user_id"`
	PlanType   string    `gorm:"size:64;not null" json:"plan_type"`
	MaxDevices int       `gorm:"not null" json:"max_devices"`
	Price      float64   `gorm:"not null" json:"price"`
	Status     string    `gorm:"size:16;not null;index" json:"status"`
	AutoRenew  bool      `gorm:"not null" json:"auto_renew"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Invoice is a bill issued to a user, optionally for a subscription.
type Invoice struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"index;size:36;not null" json:"user_id"`
	SubscriptionID *string    `gorm:"size:36" json:"subscription_id"`
	Amount         float64    `gorm:"not null" json:"amount"`
	Status         string     `gorm:"size:16;not null" json:"status"`
	IssueDate      time.Time  `gorm:"index;not null" json:"issue_date"`
	DueDate        time.Time  `gorm:"not null" json:"due_date"`
	PaidDate       *time.Time `json:"paid_date"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsPaid reports whether the invoice has been settled.
func (i Invoice) IsPaid() bool {
	return i.Status == InvoicePaid
}
