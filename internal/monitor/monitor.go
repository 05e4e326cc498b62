// Package monitor periodically probes every registered router and records
// its reachability.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/notification"
)

// maxConcurrentProbes bounds how many routers are dialed at once.
const maxConcurrentProbes = 16

// Store is the persistence the monitor needs.
type Store interface {
	ListAllDevices(ctx context.Context) ([]model.Device, error)
}

// DeviceWriter records probe outcomes.
type DeviceWriter interface {
	UpdateDevice(ctx context.Context, id string, update model.DeviceUpdate) (*model.Device, error)
	UpdateDeviceStatus(ctx context.Context, id string, snapshot model.DeviceStatus) (*model.DeviceStatus, error)
	AddDeviceLog(ctx context.Context, id, action, details string) (*model.DeviceLog, error)
}

// Dispatcher queues alerts for state changes.
type Dispatcher interface {
	Dispatch(alert notification.Alert)
}

// Service orchestrates the probe cycles.
type Service struct {
	cfg     config.MonitorConfig
	store   Store
	devices DeviceWriter
	prober  Prober
	alerts  Dispatcher
}

// NewService creates a monitor that dials the configured probe port.
func NewService(cfg config.MonitorConfig, s Store, devices DeviceWriter, alerts Dispatcher) *Service {
	return &Service{
		cfg:     cfg,
		store:   s,
		devices: devices,
		prober:  TCPProber{Timeout: cfg.Timeout},
		alerts:  alerts,
	}
}

// WithProber replaces the network prober.
func (s *Service) WithProber(p Prober) *Service {
	s.prober = p
	return s
}

// Run probes once immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Monitor is disabled. Not starting.")
		return
	}
	log.Println("Starting device monitor...")

	s.ProbeOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Device monitor shutting down.")
			return
		case <-timer.C:
			s.ProbeOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// ProbeOnce runs a single cycle over all devices and returns how many
// changed state.
func (s *Service) ProbeOnce(ctx context.Context) int {
	devices, err := s.store.ListAllDevices(ctx)
	if err != nil {
		log.Printf("Error listing devices: %v", err)
		return 0
	}

	changed := make([]bool, len(devices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i := range devices {
		i := i
		device := devices[i]
		g.Go(func() error {
			ok, err := s.probeDevice(gctx, device)
			if err != nil {
				log.Printf("Error recording probe for device %s: %v", device.ID, err)
			}
			changed[i] = ok
			return nil
		})
	}
	g.Wait()

	n := 0
	for _, c := range changed {
		if c {
			n++
		}
	}
	log.Printf("Probe cycle complete: %d devices, %d changed", len(devices), n)
	return n
}

// probeDevice records one snapshot and, on a transition, flips the device
// status, logs it and raises an alert.
func (s *Service) probeDevice(ctx context.Context, device model.Device) (bool, error) {
	snapshot := model.DeviceStatus{Status: model.DeviceOnline}
	latency, err := s.prober.Probe(ctx, device.IPAddress, s.cfg.ProbePort)
	if err != nil {
		snapshot.Status = model.DeviceOffline
	} else {
		ms := latency.Milliseconds()
		snapshot.LatencyMS = &ms
	}

	if _, err := s.devices.UpdateDeviceStatus(ctx, device.ID, snapshot); err != nil {
		return false, err
	}
	if snapshot.Status == device.Status {
		return false, nil
	}

	state := snapshot.Status
	if _, err := s.devices.UpdateDevice(ctx, device.ID, model.DeviceUpdate{Status: &state}); err != nil {
		return false, err
	}
	details := fmt.Sprintf("%s -> %s", device.Status, state)
	if _, err := s.devices.AddDeviceLog(ctx, device.ID, "status_changed", details); err != nil {
		return true, err
	}
	if s.alerts != nil {
		s.alerts.Dispatch(notification.Alert{DeviceID: device.ID, Status: state})
	}
	return true, nil
}
