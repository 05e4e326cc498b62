package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/mw"
	"mikrotik-manager/internal/view"
)

func (h *Handler) dashboard(c *gin.Context) *view.DashboardController {
	return h.views.Dashboard(mw.Session(c))
}

// GetDashboard renders the dashboard, loading it on first visit.
func (h *Handler) GetDashboard(c *gin.Context) {
	d := h.dashboard(c)
	if !d.Loaded() {
		c.JSON(http.StatusOK, d.Load(c.Request.Context()))
		return
	}
	c.JSON(http.StatusOK, d.View())
}

func (h *Handler) ReloadDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard(c).Load(c.Request.Context()))
}

type tabRequest struct {
	Tab view.Tab `json:"tab" binding:"required"`
}

func (h *Handler) SelectTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Tab.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tab " + string(req.Tab)})
		return
	}
	c.JSON(http.StatusOK, h.dashboard(c).SelectTab(req.Tab))
}

// OpenAddModal opens the add-device form. At capacity it answers 409.
func (h *Handler) OpenAddModal(c *gin.Context) {
	v, err := h.dashboard(c).OpenAddModal()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "dashboard": v})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) CloseAddModal(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard(c).CloseAddModal())
}

// SubmitDevice sends the add-device form. Failures still return the
// dashboard so the client can redisplay the open form.
func (h *Handler) SubmitDevice(c *gin.Context) {
	var form model.DeviceDraft
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	d := h.dashboard(c)
	if !d.View().AddModalOpen {
		if v, err := d.OpenAddModal(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "dashboard": v})
			return
		}
	}
	v, err := d.SubmitDevice(c.Request.Context(), form)
	if errors.Is(err, view.ErrDeviceLogFailed) {
		// The device exists; the dashboard carries the error.
		c.JSON(http.StatusCreated, v)
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		if v.AddModalOpen {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": v.Error, "dashboard": v})
		return
	}
	c.JSON(http.StatusCreated, v)
}

// RemoveDevice deletes a device from the dashboard. Without confirm=true
// nothing is deleted.
func (h *Handler) RemoveDevice(c *gin.Context) {
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	confirmed := c.Query("confirm") == "true"
	v, err := h.dashboard(c).DeleteDevice(c.Request.Context(), c.Param("id"), confirmed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": v.Error, "dashboard": v})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) GetOverview(c *gin.Context) {
	o, err := view.LoadOverview(c.Request.Context(), h.devices, h.billing, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetInvoiceView reloads the invoice list and applies the filter query.
func (h *Handler) GetInvoiceView(c *gin.Context) {
	inv := h.views.Invoices(mw.Session(c))
	if raw, ok := c.GetQuery("filter"); ok {
		f, err := view.ParseInvoiceFilter(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		inv.SetFilter(f)
	}
	c.JSON(http.StatusOK, inv.Load(c.Request.Context()))
}

func (h *Handler) PayFromInvoiceView(c *gin.Context) {
	if !h.ownedInvoice(c) {
		return
	}
	v, err := h.views.Invoices(mw.Session(c)).MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
