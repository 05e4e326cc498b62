package view

import (
	"context"
	"log"

	"mikrotik-manager/internal/auth"
)

// Screen is the top-level view selected by the session state.
type Screen string

const (
	ScreenLoading   Screen = "loading"
	ScreenAuth      Screen = "auth"
	ScreenDashboard Screen = "dashboard"
)

// SessionState is what the top-level view renders.
type SessionState struct {
	Screen Screen         `json:"view"`
	User   *auth.AuthUser `json:"user"`
}

// SessionController resolves which screen a token leads to and runs the
// sign-in, sign-up and sign-out flows.
type SessionController struct {
	gateway AuthGateway
}

func NewSessionController(gateway AuthGateway) *SessionController {
	return &SessionController{gateway: gateway}
}

// Resolve maps a token to a screen. Lookup errors are logged and treated
// as signed out.
func (c *SessionController) Resolve(ctx context.Context, token string) SessionState {
	session, err := c.gateway.GetSession(ctx, token)
	if err != nil {
		log.Printf("Error resolving session: %v", err)
		return SessionState{Screen: ScreenAuth}
	}
	return stateFor(session)
}

// SignIn signs in and returns the new session with the resolved state.
func (c *SessionController) SignIn(ctx context.Context, email, password string) (*auth.Session, SessionState, error) {
	session, err := c.gateway.SignIn(ctx, email, password)
	if err != nil {
		return nil, SessionState{Screen: ScreenAuth}, err
	}
	return session, c.Resolve(ctx, session.AccessToken), nil
}

// SignUp registers the account and then creates its profile row.
func (c *SessionController) SignUp(ctx context.Context, email, password, fullName string) (*auth.Session, SessionState, error) {
	session, err := c.gateway.SignUp(ctx, email, password)
	if err != nil {
		return nil, SessionState{Screen: ScreenAuth}, err
	}
	if _, err := c.gateway.CreateUserProfile(ctx, session.User.ID, session.User.Email, fullName); err != nil {
		return session, stateFor(session), err
	}
	return session, c.Resolve(ctx, session.AccessToken), nil
}

// SignOut ends the session. Listeners drop any state held for it.
func (c *SessionController) SignOut(ctx context.Context, session *auth.Session) (SessionState, error) {
	if err := c.gateway.SignOut(ctx, session); err != nil {
		return stateFor(session), err
	}
	return SessionState{Screen: ScreenAuth}, nil
}

func stateFor(session *auth.Session) SessionState {
	if session == nil {
		return SessionState{Screen: ScreenAuth}
	}
	user := session.User
	return SessionState{Screen: ScreenDashboard, User: &user}
}
