package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, 10*time.Minute))

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 2*ttl), ttl)

	requireSession := mw.RequireSession(h.gateway)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Public
		api.POST("/auth/signup", h.SignUp)
		api.POST("/auth/signin", h.SignIn)
		api.GET("/auth/user", h.GetCurrentUser)
		api.GET("/session", h.GetSession)
		api.GET("/plans", caching, h.ListPlans)
		api.GET("/push/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("", requireSession)
		authed.POST("/auth/signout", h.SignOut)
		authed.GET("/profile", h.GetProfile)
		authed.PATCH("/profile", h.UpdateProfile)

		authed.GET("/devices", h.ListDevices)
		authed.POST("/devices", h.CreateDevice)
		authed.GET("/devices/:id", h.GetDevice)
		authed.PATCH("/devices/:id", h.UpdateDevice)
		authed.DELETE("/devices/:id", h.DeleteDevice)
		authed.GET("/devices/:id/status", h.GetDeviceStatus)
		authed.PUT("/devices/:id/status", h.PutDeviceStatus)
		authed.GET("/devices/:id/logs", h.ListDeviceLogs)
		authed.POST("/devices/:id/logs", h.CreateDeviceLog)

		authed.GET("/subscription", h.GetSubscription)
		authed.POST("/subscription", h.CreateSubscription)
		authed.PUT("/subscription/:id/plan", h.ChangePlan)
		authed.POST("/subscription/:id/cancel", h.CancelSubscription)
		authed.GET("/invoices", h.ListInvoices)
		authed.POST("/invoices", h.CreateInvoice)
		authed.POST("/invoices/:id/pay", h.PayInvoice)

		authed.GET("/dashboard", h.GetDashboard)
		authed.POST("/dashboard/reload", h.ReloadDashboard)
		authed.PUT("/dashboard/tab", h.SelectTab)
		authed.POST("/dashboard/modal", h.OpenAddModal)
		authed.DELETE("/dashboard/modal", h.CloseAddModal)
		authed.POST("/dashboard/devices", h.SubmitDevice)
		authed.DELETE("/dashboard/devices/:id", h.RemoveDevice)
		authed.GET("/overview", h.GetOverview)
		authed.GET("/invoices/view", h.GetInvoiceView)
		authed.POST("/invoices/view/:id/pay", h.PayFromInvoiceView)

		authed.GET("/push/subscriptions", h.ListPushSubscriptions)
		authed.PUT("/push/subscriptions", h.PutPushSubscription)
		authed.DELETE("/push/subscriptions", h.DeletePushSubscription)
	}

	return r
}
