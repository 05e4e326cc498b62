package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/parse"
)

var (
	// ErrDeviceLimit is returned when the add-device form is requested at capacity.
	ErrDeviceLimit = errors.New("device limit reached for the current plan")
	// ErrDeviceLogFailed means the device was created but its "created" log
	// entry was not. The device must not be submitted again.
	ErrDeviceLogFailed = errors.New("device added but its log entry failed")
)

// DashboardController owns one session's dashboard state.
type DashboardController struct {
	devices DeviceAccess
	billing BillingAccess
	userID  string

	mu    sync.Mutex
	state DashboardState
}

// NewDashboardController creates a controller in the loading phase.
func NewDashboardController(devices DeviceAccess, billing BillingAccess, userID string) *DashboardController {
	return &DashboardController{
		devices: devices,
		billing: billing,
		userID:  userID,
		state:   NewDashboardState(),
	}
}

func (c *DashboardController) dispatch(ev DashboardEvent) DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ReduceDashboard(c.state, ev)
	return Render(c.state)
}

// View returns the current rendered state.
func (c *DashboardController) View() DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Render(c.state)
}

// Loaded reports whether the initial load has finished.
func (c *DashboardController) Loaded() bool {
	return c.View().Phase == PhaseReady
}

// Load fetches devices and the active subscription concurrently. Either
// failure discards both results and leaves the dashboard degraded.
func (c *DashboardController) Load(ctx context.Context) DashboardView {
	c.dispatch(LoadStarted{})

	var (
		devices []model.Device
		sub     *model.Subscription
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		devices, err = c.devices.GetDevices(gctx, c.userID)
		return err
	})
	g.Go(func() error {
		var err error
		sub, err = c.billing.GetSubscription(gctx, c.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("Error loading dashboard for user %s: %v", c.userID, err)
		return c.dispatch(LoadFailed{Message: "failed to load data"})
	}
	return c.dispatch(LoadSucceeded{Devices: devices, Subscription: sub})
}

// SelectTab switches the visible sub-view. Unknown tabs are ignored.
func (c *DashboardController) SelectTab(tab Tab) DashboardView {
	return c.dispatch(TabSelected{Tab: tab})
}

// OpenAddModal opens the add-device form when the plan allows another device.
func (c *DashboardController) OpenAddModal() (DashboardView, error) {
	v := c.dispatch(AddModalOpened{})
	if !v.AddModalOpen {
		return v, ErrDeviceLimit
	}
	return v, nil
}

// CloseAddModal dismisses the form, keeping what was typed.
func (c *DashboardController) CloseAddModal() DashboardView {
	return c.dispatch(AddModalClosed{})
}

// SubmitDevice validates the form, creates the device and writes its
// "created" log. On failure the form stays open with its contents.
func (c *DashboardController) SubmitDevice(ctx context.Context, raw model.DeviceDraft) (DashboardView, error) {
	c.dispatch(FormChanged{Draft: raw})
	c.dispatch(AddSubmitted{})

	draft, err := parse.DeviceDraft(raw)
	if err != nil {
		return c.dispatch(AddFailed{Message: err.Error()}), err
	}

	device, err := c.devices.AddDevice(ctx, draft, c.userID)
	if err != nil {
		log.Printf("Error adding device for user %s: %v", c.userID, err)
		return c.dispatch(AddFailed{Message: fmt.Sprintf("failed to add device: %v", err)}), err
	}
	v := c.dispatch(DeviceAdded{Device: *device})

	if _, err := c.devices.AddDeviceLog(ctx, device.ID, "created", "Device added"); err != nil {
		log.Printf("Error writing created log for device %s: %v", device.ID, err)
		return c.dispatch(AddFailed{Message: ErrDeviceLogFailed.Error()}), fmt.Errorf("%w: %v", ErrDeviceLogFailed, err)
	}
	return v, nil
}

// DeleteDevice removes a device after the user confirmed. Without
// confirmation it does nothing.
func (c *DashboardController) DeleteDevice(ctx context.Context, id string, confirmed bool) (DashboardView, error) {
	if !confirmed {
		return c.View(), nil
	}
	if err := c.devices.DeleteDevice(ctx, id); err != nil {
		log.Printf("Error deleting device %s: %v", id, err)
		return c.dispatch(DeleteFailed{Message: "failed to delete device"}), err
	}
	return c.dispatch(DeviceRemoved{ID: id}), nil
}
