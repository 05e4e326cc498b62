package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mikrotik-manager/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutPushSubscription registers or refreshes a browser endpoint for the caller.
func (h *Handler) PutPushSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   userID(c),
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertPushSubscription(c.Request.Context(), &sub); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeletePushSubscription removes one of the caller's endpoints.
func (h *Handler) DeletePushSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subs, err := h.store.ListPushSubscriptionsByUser(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	for _, s := range subs {
		if s.Endpoint == req.Endpoint {
			if err := h.store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
				fail(c, err)
				return
			}
			break
		}
	}
	c.Status(http.StatusNoContent)
}

// ListPushSubscriptions returns the caller's registered endpoints.
func (h *Handler) ListPushSubscriptions(c *gin.Context) {
	subs, err := h.store.ListPushSubscriptionsByUser(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	c.JSON(http.StatusOK, subs)
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
