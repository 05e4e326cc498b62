package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/auth"
	"mikrotik-manager/internal/billing"
	"mikrotik-manager/internal/devices"
	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/store"
	"mikrotik-manager/internal/testutil"
	"mikrotik-manager/internal/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	gormDB := testutil.NewDB(t)
	s := store.NewGormStore(gormDB)
	gateway := auth.NewGateway(s, config.AuthConfig{JWTSecret: "api-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost})
	deviceSvc := devices.NewService(s)
	billingSvc := billing.NewService(s)
	views := view.NewRegistry(deviceSvc, billingSvc, time.Minute)
	gateway.SubscribeToAuthChanges(views.HandleAuthEvent)

	h := NewHandler(Deps{
		Store:   s,
		Gateway: gateway,
		Devices: deviceSvc,
		Billing: billingSvc,
		Views:   views,
		Plans: []config.PlanConfig{
			{Type: "basic", MaxDevices: 1, Price: 0},
			{Type: "pro", MaxDevices: 2, Price: 49.99},
		},
		WebPush: &webpush.Options{VAPIDPublicKey: "public-key"},
	})
	cfg := config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60}
	return &testServer{t: t, router: NewRouter(h, cfg), db: gormDB}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) signUp(email string) string {
	w := s.do("POST", "/api/auth/signup", "", gin.H{"email": email, "password": "x", "full_name": "Ali"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Session auth.Session      `json:"session"`
		State   view.SessionState `json:"state"`
	}](s.t, w)
	assert.Equal(s.t, view.ScreenDashboard, resp.State.Screen)
	return resp.Session.AccessToken
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do("GET", "/api/session", "", nil)
	assert.JSONEq(t, `{"view":"auth","user":null}`, w.Body.String())

	token := srv.signUp("a@b.com")

	w = srv.do("POST", "/api/auth/signup", "", gin.H{"email": "a@b.com", "password": "y"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do("POST", "/api/auth/signin", "", gin.H{"email": "a@b.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do("POST", "/api/auth/signin", "", gin.H{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do("GET", "/api/auth/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[struct {
		User auth.AuthUser `json:"user"`
	}](t, w).User

	w = srv.do("GET", "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[map[string]any](t, w)
	assert.Equal(t, user.ID, profile["id"])
	assert.Equal(t, "Ali", profile["full_name"])

	w = srv.do("PATCH", "/api/profile", token, gin.H{"full_name": "Ali B"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ali B", decode[map[string]any](t, w)["full_name"])

	w = srv.do("POST", "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, srv.do("GET", "/api/profile", token, nil).Code)
	assert.JSONEq(t, `{"user":null}`, srv.do("GET", "/api/auth/user", token, nil).Body.String())
}

func TestDashboardFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp("a@b.com")

	w := srv.do("GET", "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[view.DashboardView](t, w)
	assert.Equal(t, view.PhaseReady, dash.Phase)
	assert.True(t, dash.CanAddDevice)

	w = srv.do("POST", "/api/dashboard/devices", token, gin.H{"name": "R1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do("POST", "/api/dashboard/devices", token, gin.H{"name": "R1", "ip_address": "10.0.0.1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dash = decode[view.DashboardView](t, w)
	require.Len(t, dash.Devices, 1)
	assert.Equal(t, "R1", dash.Devices[0].Name)
	assert.False(t, dash.CanAddDevice)
	deviceID := dash.Devices[0].ID

	assert.Equal(t, http.StatusConflict, srv.do("POST", "/api/dashboard/modal", token, nil).Code)

	w = srv.do("GET", "/api/devices/"+deviceID+"/logs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]map[string]any](t, w)
	require.Len(t, logs, 1)
	assert.Equal(t, "created", logs[0]["action"])

	w = srv.do("PUT", "/api/dashboard/tab", token, gin.H{"tab": "devices"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, view.TabDevices, decode[view.DashboardView](t, w).Tab)

	w = srv.do("DELETE", "/api/dashboard/devices/"+deviceID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[view.DashboardView](t, w).Devices, 1)

	w = srv.do("DELETE", "/api/dashboard/devices/"+deviceID+"?confirm=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[view.DashboardView](t, w).Devices)

	assert.Equal(t, http.StatusNotFound, srv.do("GET", "/api/devices/"+deviceID, token, nil).Code)
}

func TestSubmitDevice_LogFailureStillCreated(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp("a@b.com")
	require.NoError(t, srv.db.Migrator().DropTable(&model.DeviceLog{}))

	w := srv.do("POST", "/api/dashboard/devices", token, gin.H{"name": "R1", "ip_address": "10.0.0.1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dash := decode[view.DashboardView](t, w)
	require.Len(t, dash.Devices, 1)
	assert.False(t, dash.AddModalOpen)
	assert.Equal(t, view.ErrDeviceLogFailed.Error(), dash.Error)

	w = srv.do("GET", "/api/devices", token, nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestSignUp_PasswordTooLong(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do("POST", "/api/auth/signup", "", gin.H{"email": "a@b.com", "password": strings.Repeat("p", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestDevicesAreScopedToOwner(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.signUp("alice@example.com")
	bob := srv.signUp("bob@example.com")

	w := srv.do("POST", "/api/devices", alice, gin.H{"name": "R1", "ip_address": "10.0.0.1"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"].(string)

	assert.Equal(t, http.StatusNotFound, srv.do("GET", "/api/devices/"+id, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("DELETE", "/api/devices/"+id, bob, nil).Code)
	assert.JSONEq(t, `[]`, srv.do("GET", "/api/devices", bob, nil).Body.String())

	w = srv.do("PUT", "/api/devices/"+id+"/status", alice, gin.H{"status": "online", "uptime": "1d2h"})
	require.Equal(t, http.StatusOK, w.Code)
	w = srv.do("GET", "/api/devices/"+id+"/status", alice, nil)
	assert.Equal(t, "online", decode[map[string]any](t, w)["status"])

	w = srv.do("PATCH", "/api/devices/"+id, alice, gin.H{"location": "roof"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "roof", decode[map[string]any](t, w)["location"])

	assert.Equal(t, http.StatusBadRequest, srv.do("PUT", "/api/devices/"+id+"/status", alice, gin.H{"status": "sleepy"}).Code)
}

func TestBillingFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp("a@b.com")

	w := srv.do("GET", "/api/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]config.PlanConfig](t, w), 2)

	assert.JSONEq(t, `null`, srv.do("GET", "/api/subscription", token, nil).Body.String())
	assert.Equal(t, http.StatusBadRequest, srv.do("POST", "/api/subscription", token, gin.H{"plan_type": "gold"}).Code)

	w = srv.do("POST", "/api/subscription", token, gin.H{"plan_type": "basic"})
	require.Equal(t, http.StatusCreated, w.Code)
	subID := decode[map[string]any](t, w)["id"].(string)

	w = srv.do("PUT", "/api/subscription/"+subID+"/plan", token, gin.H{"plan_type": "pro"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["max_devices"])

	w = srv.do("POST", "/api/invoices", token, gin.H{"amount": 49.99, "subscription_id": subID})
	require.Equal(t, http.StatusCreated, w.Code)
	invID := decode[map[string]any](t, w)["id"].(string)

	w = srv.do("GET", "/api/invoices/view?filter=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[view.InvoiceView](t, w).Visible, 1)

	w = srv.do("POST", "/api/invoices/view/"+invID+"/pay", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[view.InvoiceView](t, w).Visible, "paid invoice leaves the pending filter")

	w = srv.do("GET", "/api/invoices/view?filter=paid", token, nil)
	assert.Len(t, decode[view.InvoiceView](t, w).Visible, 1)

	w = srv.do("GET", "/api/overview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	overview := decode[view.Overview](t, w)
	assert.Zero(t, overview.UnpaidAmount)
	require.NotNil(t, overview.Subscription)
	assert.Equal(t, "pro", overview.Subscription.PlanType)

	w = srv.do("POST", "/api/subscription/"+subID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode[map[string]any](t, w)["status"])
	assert.Equal(t, http.StatusNotFound, srv.do("POST", "/api/subscription/"+subID+"/cancel", token, nil).Code)

	other := srv.signUp("other@example.com")
	assert.Equal(t, http.StatusNotFound, srv.do("POST", "/api/invoices/"+invID+"/pay", other, nil).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("POST", "/api/invoices", other, gin.H{"amount": 5, "subscription_id": subID}).Code)
	assert.Equal(t, http.StatusNotFound, srv.do("POST", "/api/invoices", token, gin.H{"amount": 5, "subscription_id": "missing"}).Code)
	assert.JSONEq(t, `[]`, srv.do("GET", "/api/invoices", other, nil).Body.String())
}

func TestPushSubscriptions(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp("a@b.com")

	w := srv.do("GET", "/api/push/vapid_public_key", "", nil)
	assert.JSONEq(t, `{"public_key":"public-key"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, srv.do("PUT", "/api/push/subscriptions", token, gin.H{"endpoint": "e"}).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do("PUT", "/api/push/subscriptions", "", gin.H{}).Code)

	w = srv.do("PUT", "/api/push/subscriptions", token, gin.H{"endpoint": "https://push.example.com/1", "p256dh": "k", "auth": "a"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do("GET", "/api/push/subscriptions", token, nil)
	require.Len(t, decode[[]map[string]any](t, w), 1)

	w = srv.do("DELETE", "/api/push/subscriptions", token, gin.H{"endpoint": "https://push.example.com/1"})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.JSONEq(t, `[]`, srv.do("GET", "/api/push/subscriptions", token, nil).Body.String())
}
