package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mikrotik-manager/internal/model"
)

func TestComputeOverview(t *testing.T) {
	devs := []model.Device{
		{ID: "1", Status: model.DeviceOnline},
		{ID: "2", Status: model.DeviceOffline},
		{ID: "3", Status: model.DeviceOnline},
	}
	sub := &model.Subscription{PlanType: "pro", MaxDevices: 5, Price: 19.99, AutoRenew: true}
	invs := []model.Invoice{
		{Amount: 10.10, Status: model.InvoicePending},
		{Amount: 20.20, Status: "overdue"},
		{Amount: 99, Status: model.InvoicePaid},
	}

	o := ComputeOverview(devs, sub, invs)
	assert.Equal(t, 3, o.TotalDevices)
	assert.Equal(t, 2, o.OnlineDevices)
	assert.Equal(t, 1, o.OfflineDevices)
	require.NotNil(t, o.Subscription)
	assert.Equal(t, 3, o.Subscription.UsedDevices)
	assert.Equal(t, 5, o.Subscription.MaxDevices)
	assert.Equal(t, 2, o.UnpaidCount)
	assert.Equal(t, 30.30, o.UnpaidAmount)
}

func TestComputeOverview_Empty(t *testing.T) {
	o := ComputeOverview(nil, nil, nil)
	assert.Zero(t, o.TotalDevices)
	assert.Nil(t, o.Subscription)
	assert.Zero(t, o.UnpaidAmount)
}

func TestLoadOverview(t *testing.T) {
	ctx := context.Background()
	access := &stubAccess{
		devices: devicesN(2),
		inv:     []model.Invoice{{Amount: 5, Status: model.InvoicePending}},
	}
	o, err := LoadOverview(ctx, access, access, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, o.TotalDevices)
	assert.Equal(t, 5.0, o.UnpaidAmount)

	access.invErr = errors.New("boom")
	_, err = LoadOverview(ctx, access, access, "u1")
	assert.Error(t, err)
}
