package view

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"mikrotik-manager/internal/model"
)

// InvoiceFilter selects which invoices the invoice view shows.
type InvoiceFilter string

const (
	FilterAll     InvoiceFilter = "all"
	FilterPending InvoiceFilter = "pending"
	FilterPaid    InvoiceFilter = "paid"
)

// ParseInvoiceFilter accepts all, pending or paid. Empty means all.
func ParseInvoiceFilter(raw string) (InvoiceFilter, error) {
	switch f := InvoiceFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterPaid:
		return f, nil
	}
	return "", fmt.Errorf("unknown invoice filter %q", raw)
}

// FilterInvoices returns the invoices matching f, in their original order.
// Anything that is not paid counts as pending.
func FilterInvoices(invoices []model.Invoice, f InvoiceFilter) []model.Invoice {
	out := make([]model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		switch f {
		case FilterPending:
			if inv.IsPaid() {
				continue
			}
		case FilterPaid:
			if !inv.IsPaid() {
				continue
			}
		}
		out = append(out, inv)
	}
	return out
}

// InvoiceState is the invoice view's state.
type InvoiceState struct {
	Loading  bool            `json:"loading"`
	Invoices []model.Invoice `json:"invoices"`
	Filter   InvoiceFilter   `json:"filter"`
}

// InvoiceEvent is an input to ReduceInvoices.
type InvoiceEvent interface {
	isInvoiceEvent()
}

type (
	InvoicesLoading    struct{}
	InvoicesLoaded     struct{ Invoices []model.Invoice }
	InvoicesLoadFailed struct{}
	FilterSelected     struct{ Filter InvoiceFilter }
)

func (InvoicesLoading) isInvoiceEvent()    {}
func (InvoicesLoaded) isInvoiceEvent()     {}
func (InvoicesLoadFailed) isInvoiceEvent() {}
func (FilterSelected) isInvoiceEvent()     {}

// ReduceInvoices returns the state that follows s after ev.
func ReduceInvoices(s InvoiceState, ev InvoiceEvent) InvoiceState {
	switch e := ev.(type) {
	case InvoicesLoading:
		s.Loading = true
	case InvoicesLoaded:
		s.Loading = false
		s.Invoices = make([]model.Invoice, len(e.Invoices))
		copy(s.Invoices, e.Invoices)
	case InvoicesLoadFailed:
		// Keep whatever was shown before.
		s.Loading = false
	case FilterSelected:
		s.Filter = e.Filter
	}
	return s
}

// InvoiceView is the rendered invoice list.
type InvoiceView struct {
	InvoiceState
	Visible []model.Invoice `json:"visible"`
}

// RenderInvoices applies the state's filter.
func RenderInvoices(s InvoiceState) InvoiceView {
	return InvoiceView{InvoiceState: s, Visible: FilterInvoices(s.Invoices, s.Filter)}
}

// InvoiceController owns one session's invoice view.
type InvoiceController struct {
	billing BillingAccess
	userID  string

	mu    sync.Mutex
	state InvoiceState
}

// NewInvoiceController creates an empty invoice view showing all invoices.
func NewInvoiceController(billing BillingAccess, userID string) *InvoiceController {
	return &InvoiceController{
		billing: billing,
		userID:  userID,
		state:   InvoiceState{Loading: true, Invoices: []model.Invoice{}, Filter: FilterAll},
	}
}

func (c *InvoiceController) dispatch(ev InvoiceEvent) InvoiceView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ReduceInvoices(c.state, ev)
	return RenderInvoices(c.state)
}

// View returns the current rendered state.
func (c *InvoiceController) View() InvoiceView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RenderInvoices(c.state)
}

// Load refetches the user's invoices. Failures are logged only.
func (c *InvoiceController) Load(ctx context.Context) InvoiceView {
	c.dispatch(InvoicesLoading{})
	invoices, err := c.billing.GetInvoices(ctx, c.userID)
	if err != nil {
		log.Printf("Error loading invoices for user %s: %v", c.userID, err)
		return c.dispatch(InvoicesLoadFailed{})
	}
	return c.dispatch(InvoicesLoaded{Invoices: invoices})
}

// SetFilter changes the visible subset without refetching.
func (c *InvoiceController) SetFilter(f InvoiceFilter) InvoiceView {
	return c.dispatch(FilterSelected{Filter: f})
}

// MarkPaid marks the invoice paid and reloads the full list.
func (c *InvoiceController) MarkPaid(ctx context.Context, id string) (InvoiceView, error) {
	if _, err := c.billing.MarkInvoiceAsPaid(ctx, id); err != nil {
		log.Printf("Error paying invoice %s: %v", id, err)
		return c.View(), err
	}
	return c.Load(ctx), nil
}
