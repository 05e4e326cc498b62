package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/store"
	"mikrotik-manager/internal/testutil"
)

func newService(t *testing.T) (*Service, store.Store, *testutil.Clock) {
	s := testutil.NewStore(t)
	clock := testutil.NewClock()
	return NewService(s).WithClock(clock.Tick), s, clock
}

func TestService_AddThenGetDevicesPutsNewDeviceFirst(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)
	owner := testutil.CreateUser(t, s, "owner@example.com")

	_, err := svc.AddDevice(ctx, model.DeviceDraft{Name: "old", IPAddress: "10.0.0.2"}, owner.ID)
	require.NoError(t, err)

	draft := model.DeviceDraft{Name: "R1", IPAddress: "10.0.0.1", Identity: "MikroTik", Model: "hAP ax2", Location: "office"}
	added, err := svc.AddDevice(ctx, draft, owner.ID)
	require.NoError(t, err)

	devices, err := svc.GetDevices(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	head := devices[0]
	assert.Equal(t, added.ID, head.ID)
	assert.Equal(t, owner.ID, head.OwnerID)
	assert.Equal(t, draft.Name, head.Name)
	assert.Equal(t, draft.IPAddress, head.IPAddress)
	assert.Equal(t, draft.Identity, head.Identity)
	assert.Equal(t, draft.Model, head.Model)
	assert.Equal(t, draft.Location, head.Location)
	assert.Equal(t, model.DeviceOffline, head.Status)
}

func TestService_UpdateDeviceStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)
	owner := testutil.CreateUser(t, s, "owner@example.com")

	added, err := svc.AddDevice(ctx, model.DeviceDraft{Name: "R1", IPAddress: "10.0.0.1"}, owner.ID)
	require.NoError(t, err)

	name := "R1-renamed"
	updated, err := svc.UpdateDevice(ctx, added.ID, model.DeviceUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "10.0.0.1", updated.IPAddress)
	assert.True(t, updated.UpdatedAt.After(added.UpdatedAt))

	_, err = svc.UpdateDevice(ctx, uuid.NewString(), model.DeviceUpdate{Name: &name})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestService_DeviceStatusUpsert(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)
	owner := testutil.CreateUser(t, s, "owner@example.com")
	added, err := svc.AddDevice(ctx, model.DeviceDraft{Name: "R1", IPAddress: "10.0.0.1"}, owner.ID)
	require.NoError(t, err)

	status, err := svc.GetDeviceStatus(ctx, added.ID)
	require.NoError(t, err)
	assert.Nil(t, status)

	first, err := svc.UpdateDeviceStatus(ctx, added.ID, model.DeviceStatus{Status: model.DeviceOnline, Version: "7.15"})
	require.NoError(t, err)
	second, err := svc.UpdateDeviceStatus(ctx, added.ID, model.DeviceStatus{Status: model.DeviceOffline})
	require.NoError(t, err)
	assert.True(t, second.LastUpdated.After(first.LastUpdated))

	status, err = svc.GetDeviceStatus(ctx, added.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, model.DeviceOffline, status.Status)
	assert.Equal(t, added.ID, status.DeviceID)
}

func TestService_DeviceLogsDefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)
	owner := testutil.CreateUser(t, s, "owner@example.com")
	added, err := svc.AddDevice(ctx, model.DeviceDraft{Name: "R1", IPAddress: "10.0.0.1"}, owner.ID)
	require.NoError(t, err)

	for i := 0; i < 105; i++ {
		_, err := svc.AddDeviceLog(ctx, added.ID, "ping", "ok")
		require.NoError(t, err)
	}
	last, err := svc.AddDeviceLog(ctx, added.ID, "created", "Device added")
	require.NoError(t, err)

	logs, err := svc.GetDeviceLogs(ctx, added.ID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 100)
	assert.Equal(t, last.ID, logs[0].ID)

	few, err := svc.GetDeviceLogs(ctx, added.ID, 5)
	require.NoError(t, err)
	assert.Len(t, few, 5)
}

func TestService_DeleteDevice(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newService(t)
	owner := testutil.CreateUser(t, s, "owner@example.com")
	added, err := svc.AddDevice(ctx, model.DeviceDraft{Name: "R1", IPAddress: "10.0.0.1"}, owner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDevice(ctx, added.ID))
	got, err := svc.GetDevice(ctx, added.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
