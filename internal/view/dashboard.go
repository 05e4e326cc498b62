// Package view holds the presentation state machines: per-screen state, the
// pure reducers that move it, and controllers that run store calls and feed
// their outcomes back into the reducers.
package view

import (
	"mikrotik-manager/internal/model"
)

// Phase is the dashboard's loading phase.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseLoadingData Phase = "authenticated-loading-data"
	PhaseReady       Phase = "ready"
)

// Tab is a dashboard sub-view.
type Tab string

const (
	TabOverview Tab = "overview"
	TabDevices  Tab = "devices"
	TabInvoices Tab = "invoices"
)

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabOverview, TabDevices, TabInvoices:
		return true
	}
	return false
}

// DefaultDeviceCap applies when the user has no subscription.
const DefaultDeviceCap = 1

// DashboardState is the transient state of one user's dashboard.
type DashboardState struct {
	Phase        Phase               `json:"phase"`
	Tab          Tab                 `json:"tab"`
	Devices      []model.Device      `json:"devices"`
	Subscription *model.Subscription `json:"subscription"`
	Error        string              `json:"error,omitempty"`
	AddModalOpen bool                `json:"add_modal_open"`
	Form         model.DeviceDraft   `json:"form"`
}

// NewDashboardState is the state on mount.
func NewDashboardState() DashboardState {
	return DashboardState{Phase: PhaseLoading, Tab: TabOverview, Devices: []model.Device{}}
}

// DeviceCap is the number of devices the current subscription allows.
func (s DashboardState) DeviceCap() int {
	return DeviceCap(s.Subscription)
}

// CanAddDevice reports whether the add-device control is offered. The check
// is advisory: it is not atomic with the insert.
func (s DashboardState) CanAddDevice() bool {
	return len(s.Devices) < s.DeviceCap()
}

// DeviceCap returns the subscription's device limit, or DefaultDeviceCap when
// there is no subscription or it carries no positive limit.
func DeviceCap(sub *model.Subscription) int {
	if sub == nil || sub.MaxDevices <= 0 {
		return DefaultDeviceCap
	}
	return sub.MaxDevices
}

// DashboardEvent is an input to ReduceDashboard.
type DashboardEvent interface {
	isDashboardEvent()
}

type (
	LoadStarted   struct{}
	LoadSucceeded struct {
		Devices      []model.Device
		Subscription *model.Subscription
	}
	LoadFailed     struct{ Message string }
	TabSelected    struct{ Tab Tab }
	AddModalOpened struct{}
	AddModalClosed struct{}
	FormChanged    struct{ Draft model.DeviceDraft }
	AddSubmitted   struct{}
	DeviceAdded    struct{ Device model.Device }
	AddFailed      struct{ Message string }
	DeviceRemoved  struct{ ID string }
	DeleteFailed   struct{ Message string }
)

func (LoadStarted) isDashboardEvent()    {}
func (LoadSucceeded) isDashboardEvent()  {}
func (LoadFailed) isDashboardEvent()     {}
func (TabSelected) isDashboardEvent()    {}
func (AddModalOpened) isDashboardEvent() {}
func (AddModalClosed) isDashboardEvent() {}
func (FormChanged) isDashboardEvent()    {}
func (AddSubmitted) isDashboardEvent()   {}
func (DeviceAdded) isDashboardEvent()    {}
func (AddFailed) isDashboardEvent()      {}
func (DeviceRemoved) isDashboardEvent()  {}
func (DeleteFailed) isDashboardEvent()   {}

// ReduceDashboard returns the state that follows s after ev. It never mutates s.
func ReduceDashboard(s DashboardState, ev DashboardEvent) DashboardState {
	switch e := ev.(type) {
	case LoadStarted:
		s.Phase = PhaseLoadingData
		s.Error = ""
	case LoadSucceeded:
		s.Phase = PhaseReady
		s.Devices = cloneDevices(e.Devices)
		s.Subscription = e.Subscription
	case LoadFailed:
		// Degraded display: ready with nothing loaded.
		s.Phase = PhaseReady
		s.Devices = []model.Device{}
		s.Subscription = nil
		s.Error = e.Message
	case TabSelected:
		if e.Tab.Valid() {
			s.Tab = e.Tab
		}
	case AddModalOpened:
		if s.CanAddDevice() {
			s.AddModalOpen = true
		}
	case AddModalClosed:
		s.AddModalOpen = false
	case FormChanged:
		s.Form = e.Draft
	case AddSubmitted:
		s.Error = ""
	case DeviceAdded:
		devices := make([]model.Device, 0, len(s.Devices)+1)
		devices = append(devices, e.Device)
		s.Devices = append(devices, s.Devices...)
		s.Form = model.DeviceDraft{}
		s.AddModalOpen = false
	case AddFailed:
		s.Error = e.Message
	case DeviceRemoved:
		devices := make([]model.Device, 0, len(s.Devices))
		for _, d := range s.Devices {
			if d.ID != e.ID {
				devices = append(devices, d)
			}
		}
		s.Devices = devices
	case DeleteFailed:
		s.Error = e.Message
	}
	return s
}

func cloneDevices(devices []model.Device) []model.Device {
	out := make([]model.Device, len(devices))
	copy(out, devices)
	return out
}

// DashboardView is the rendered dashboard: state plus the derived capacity fields.
type DashboardView struct {
	DashboardState
	DeviceCount  int  `json:"device_count"`
	DeviceCap    int  `json:"device_cap"`
	CanAddDevice bool `json:"can_add_device"`
}

// Render derives the view from a state.
func Render(s DashboardState) DashboardView {
	return DashboardView{
		DashboardState: s,
		DeviceCount:    len(s.Devices),
		DeviceCap:      s.DeviceCap(),
		CanAddDevice:   s.CanAddDevice(),
	}
}
