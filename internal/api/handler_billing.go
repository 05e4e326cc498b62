package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mikrotik-manager/internal/model"
)

// ListPlans returns the plan catalog.
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.plans)
}

// GetSubscription returns the caller's active subscription or null.
func (h *Handler) GetSubscription(c *gin.Context) {
	sub, err := h.billing.GetSubscription(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type planRequest struct {
	PlanType string `json:"plan_type" binding:"required"`
}

// CreateSubscription subscribes the caller to a catalog plan.
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, ok := h.plan(req.PlanType)
	if !ok {
		badRequest(c, fmt.Errorf("unknown plan %q", req.PlanType))
		return
	}
	sub, err := h.billing.CreateSubscription(c.Request.Context(), userID(c), plan.Type, plan.MaxDevices, plan.Price)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// activeSubscription checks that the path id is the caller's active subscription.
func (h *Handler) activeSubscription(c *gin.Context) (*model.Subscription, bool) {
	sub, err := h.billing.GetSubscription(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if sub == nil || sub.ID != c.Param("id") {
		notFound(c, "subscription")
		return nil, false
	}
	return sub, true
}

// ChangePlan moves the active subscription to another catalog plan.
func (h *Handler) ChangePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, ok := h.plan(req.PlanType)
	if !ok {
		badRequest(c, fmt.Errorf("unknown plan %q", req.PlanType))
		return
	}
	if _, ok := h.activeSubscription(c); !ok {
		return
	}
	sub, err := h.billing.UpgradeSubscription(c.Request.Context(), c.Param("id"), plan.Type, plan.MaxDevices, plan.Price)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) CancelSubscription(c *gin.Context) {
	if _, ok := h.activeSubscription(c); !ok {
		return
	}
	sub, err := h.billing.CancelSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	invoices, err := h.billing.GetInvoices(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

type invoiceRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	SubscriptionID *string `json:"subscription_id"`
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.SubscriptionID != nil {
		sub, err := h.store.GetSubscription(c.Request.Context(), *req.SubscriptionID)
		if err != nil {
			fail(c, err)
			return
		}
		if sub == nil || sub.UserID != userID(c) {
			notFound(c, "subscription")
			return
		}
	}
	inv, err := h.billing.CreateInvoice(c.Request.Context(), userID(c), req.Amount, req.SubscriptionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// ownedInvoice reports whether the path invoice belongs to the caller.
func (h *Handler) ownedInvoice(c *gin.Context) bool {
	inv, err := h.store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return false
	}
	if inv == nil || inv.UserID != userID(c) {
		notFound(c, "invoice")
		return false
	}
	return true
}

func (h *Handler) PayInvoice(c *gin.Context) {
	if !h.ownedInvoice(c) {
		return
	}
	inv, err := h.billing.MarkInvoiceAsPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
