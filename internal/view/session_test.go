package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/auth"
	"mikrotik-manager/internal/billing"
	"mikrotik-manager/internal/devices"
	"mikrotik-manager/internal/store"
	"mikrotik-manager/internal/testutil"
)

func newGateway(t *testing.T) (*auth.Gateway, store.Store) {
	s := testutil.NewStore(t)
	return auth.NewGateway(s, config.AuthConfig{
		JWTSecret:  "view-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}), s
}

func TestSessionController_SignUpCreatesProfile(t *testing.T) {
	ctx := context.Background()
	g, _ := newGateway(t)
	c := NewSessionController(g)

	assert.Equal(t, ScreenAuth, c.Resolve(ctx, "").Screen)

	session, state, err := c.SignUp(ctx, "a@b.com", "x", "Ali")
	require.NoError(t, err)
	assert.Equal(t, ScreenDashboard, state.Screen)
	require.NotNil(t, state.User)

	profile, err := g.GetUserProfile(ctx, state.User.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ali", profile.FullName)
	assert.Equal(t, session.User.ID, profile.ID)
}

func TestSessionController_SignInAndOut(t *testing.T) {
	ctx := context.Background()
	g, _ := newGateway(t)
	c := NewSessionController(g)
	_, _, err := c.SignUp(ctx, "a@b.com", "x", "Ali")
	require.NoError(t, err)

	_, state, err := c.SignIn(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, ScreenAuth, state.Screen)

	session, state, err := c.SignIn(ctx, "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, ScreenDashboard, state.Screen)

	state, err = c.SignOut(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, ScreenAuth, state.Screen)
	assert.Equal(t, ScreenAuth, c.Resolve(ctx, session.AccessToken).Screen)
}

func TestRegistry_DropsStateOnSignOut(t *testing.T) {
	ctx := context.Background()
	g, s := newGateway(t)
	r := NewRegistry(devices.NewService(s), billing.NewService(s), time.Minute)
	g.SubscribeToAuthChanges(r.HandleAuthEvent)

	session, err := g.SignUp(ctx, "a@b.com", "x")
	require.NoError(t, err)

	d := r.Dashboard(session)
	assert.Same(t, d, r.Dashboard(session))
	inv := r.Invoices(session)
	assert.Same(t, inv, r.Invoices(session))

	require.NoError(t, g.SignOut(ctx, session))
	assert.NotSame(t, d, r.Dashboard(session))
	assert.NotSame(t, inv, r.Invoices(session))
}
