package view

import (
	"time"

	"github.com/patrickmn/go-cache"

	"mikrotik-manager/internal/auth"
)

// Registry keeps per-session controllers. Idle entries expire after ttl and
// are dropped immediately when their session signs out.
type Registry struct {
	devices DeviceAccess
	billing BillingAccess
	cache   *cache.Cache
}

func NewRegistry(devices DeviceAccess, billing BillingAccess, ttl time.Duration) *Registry {
	return &Registry{
		devices: devices,
		billing: billing,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Dashboard returns the session's dashboard controller, creating it on first use.
func (r *Registry) Dashboard(session *auth.Session) *DashboardController {
	key := "dashboard:" + session.AccessToken
	if c, ok := r.cache.Get(key); ok {
		r.cache.SetDefault(key, c)
		return c.(*DashboardController)
	}
	c := NewDashboardController(r.devices, r.billing, session.User.ID)
	if err := r.cache.Add(key, c, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if existing, ok := r.cache.Get(key); ok {
			return existing.(*DashboardController)
		}
	}
	return c
}

// Invoices returns the session's invoice controller, creating it on first use.
func (r *Registry) Invoices(session *auth.Session) *InvoiceController {
	key := "invoices:" + session.AccessToken
	if c, ok := r.cache.Get(key); ok {
		r.cache.SetDefault(key, c)
		return c.(*InvoiceController)
	}
	c := NewInvoiceController(r.billing, session.User.ID)
	if err := r.cache.Add(key, c, cache.DefaultExpiration); err != nil {
		if existing, ok := r.cache.Get(key); ok {
			return existing.(*InvoiceController)
		}
	}
	return c
}

// Drop forgets everything held for the session.
func (r *Registry) Drop(session *auth.Session) {
	if session == nil {
		return
	}
	r.cache.Delete("dashboard:" + session.AccessToken)
	r.cache.Delete("invoices:" + session.AccessToken)
}

// HandleAuthEvent is an auth.Listener that drops state on sign-out.
func (r *Registry) HandleAuthEvent(ev auth.Event) {
	if ev.Type == auth.EventSignedOut {
		r.Drop(ev.Session)
	}
}
