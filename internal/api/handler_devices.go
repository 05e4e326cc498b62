package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/parse"
)

// ownedDevice loads the device named in the path and checks it belongs to
// the caller. Devices of other users are reported as missing.
func (h *Handler) ownedDevice(c *gin.Context) (*model.Device, bool) {
	device, err := h.devices.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if device == nil || device.OwnerID != userID(c) {
		notFound(c, "device")
		return nil, false
	}
	return device, true
}

func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.devices.GetDevices(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (h *Handler) CreateDevice(c *gin.Context) {
	var raw model.DeviceDraft
	if err := c.ShouldBindJSON(&raw); err != nil {
		badRequest(c, err)
		return
	}
	draft, err := parse.DeviceDraft(raw)
	if err != nil {
		badRequest(c, err)
		return
	}
	device, err := h.devices.AddDevice(c.Request.Context(), draft, userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

func (h *Handler) GetDevice(c *gin.Context) {
	device, ok := h.ownedDevice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, device)
}

func (h *Handler) UpdateDevice(c *gin.Context) {
	var req model.DeviceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Status != nil {
		state, err := parse.DeviceState(string(*req.Status))
		if err != nil {
			badRequest(c, err)
			return
		}
		req.Status = &state
	}
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	device, err := h.devices.UpdateDevice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (h *Handler) DeleteDevice(c *gin.Context) {
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	if err := h.devices.DeleteDevice(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDeviceStatus returns the latest snapshot, or null if none was recorded.
func (h *Handler) GetDeviceStatus(c *gin.Context) {
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	status, err := h.devices.GetDeviceStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type statusRequest struct {
	Status     string   `json:"status" binding:"required"`
	CPULoad    *float64 `json:"cpu_load"`
	FreeMemory *int64   `json:"free_memory"`
	Uptime     string   `json:"uptime"`
	Version    string   `json:"version"`
	LatencyMS  *int64   `json:"latency_ms"`
}

// PutDeviceStatus replaces the device's status snapshot.
func (h *Handler) PutDeviceStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	state, err := parse.DeviceState(req.Status)
	if err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	status, err := h.devices.UpdateDeviceStatus(c.Request.Context(), c.Param("id"), model.DeviceStatus{
		Status:     state,
		CPULoad:    req.CPULoad,
		FreeMemory: req.FreeMemory,
		Uptime:     req.Uptime,
		Version:    req.Version,
		LatencyMS:  req.LatencyMS,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) ListDeviceLogs(c *gin.Context) {
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	limit := parse.Limit(c.Query("limit"), parse.DefaultLogLimit)
	logs, err := h.devices.GetDeviceLogs(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

type logRequest struct {
	Action  string `json:"action" binding:"required"`
	Details string `json:"details"`
}

func (h *Handler) CreateDeviceLog(c *gin.Context) {
	var req logRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.ownedDevice(c); !ok {
		return
	}
	entry, err := h.devices.AddDeviceLog(c.Request.Context(), c.Param("id"), req.Action, req.Details)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
