package view

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"mikrotik-manager/internal/model"
)

// SubscriptionSummary is the plan usage shown on the overview.
type SubscriptionSummary struct {
	PlanType    string  `json:"plan_type"`
	Price       float64 `json:"price"`
	UsedDevices int     `json:"used_devices"`
	MaxDevices  int     `json:"max_devices"`
	AutoRenew   bool    `json:"auto_renew"`
}

// Overview is the statistics panel.
type Overview struct {
	TotalDevices   int                  `json:"total_devices"`
	OnlineDevices  int                  `json:"online_devices"`
	OfflineDevices int                  `json:"offline_devices"`
	Subscription   *SubscriptionSummary `json:"subscription"`
	UnpaidCount    int                  `json:"unpaid_count"`
	UnpaidAmount   float64              `json:"unpaid_amount"`
}

// ComputeOverview derives the statistics from already fetched data.
func ComputeOverview(devices []model.Device, sub *model.Subscription, invoices []model.Invoice) Overview {
	o := Overview{TotalDevices: len(devices)}
	for _, d := range devices {
		if d.Status == model.DeviceOnline {
			o.OnlineDevices++
		} else {
			o.OfflineDevices++
		}
	}
	if sub != nil {
		o.Subscription = &SubscriptionSummary{
			PlanType:    sub.PlanType,
			Price:       sub.Price,
			UsedDevices: len(devices),
			MaxDevices:  DeviceCap(sub),
			AutoRenew:   sub.AutoRenew,
		}
	}
	var unpaid float64
	for _, inv := range invoices {
		if !inv.IsPaid() {
			unpaid += inv.Amount
			o.UnpaidCount++
		}
	}
	o.UnpaidAmount = math.Round(unpaid*100) / 100
	return o
}

// LoadOverview fetches devices, subscription and invoices concurrently.
func LoadOverview(ctx context.Context, devices DeviceAccess, billing BillingAccess, userID string) (Overview, error) {
	var (
		devs []model.Device
		sub  *model.Subscription
		invs []model.Invoice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		devs, err = devices.GetDevices(gctx, userID)
		return
	})
	g.Go(func() (err error) {
		sub, err = billing.GetSubscription(gctx, userID)
		return
	})
	g.Go(func() (err error) {
		invs, err = billing.GetInvoices(gctx, userID)
		return
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ComputeOverview(devs, sub, invs), nil
}
