package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/auth"
	"mikrotik-manager/internal/billing"
	"mikrotik-manager/internal/devices"
	"mikrotik-manager/internal/mw"
	"mikrotik-manager/internal/parse"
	"mikrotik-manager/internal/store"
	"mikrotik-manager/internal/view"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	gateway  *auth.Gateway
	devices  *devices.Service
	billing  *billing.Service
	sessions *view.SessionController
	views    *view.Registry
	plans    []config.PlanConfig
	webpush  *webpush.Options
}

// Deps are the services a Handler is built from.
type Deps struct {
	Store   store.Store
	Gateway *auth.Gateway
	Devices *devices.Service
	Billing *billing.Service
	Views   *view.Registry
	Plans   []config.PlanConfig
	WebPush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		gateway:  d.Gateway,
		devices:  d.Devices,
		billing:  d.Billing,
		sessions: view.NewSessionController(d.Gateway),
		views:    d.Views,
		plans:    d.Plans,
		webpush:  d.WebPush,
	}
}

// plan looks up a catalog entry by type.
func (h *Handler) plan(planType string) (config.PlanConfig, bool) {
	for _, p := range h.plans {
		if p.Type == planType {
			return p, true
		}
	}
	return config.PlanConfig{}, false
}

// fail writes err as a JSON error with a status derived from its kind.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, parse.ErrMissingField), errors.Is(err, parse.ErrPasswordTooLong),
		errors.Is(err, bcrypt.ErrPasswordTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists), errors.Is(err, view.ErrDeviceLimit):
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// userID is the id of the signed-in user. Only valid behind mw.RequireSession.
func userID(c *gin.Context) string {
	return mw.Session(c).User.ID
}
