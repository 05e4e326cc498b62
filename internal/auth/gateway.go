// Package auth is the authentication gateway: sign-up, sign-in, sign-out,
// session lookup and the user profile collection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"mikrotik-manager/config"
	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrNoSession          = errors.New("auth session missing")
)

// EventType names a change in authentication state.
type EventType string

const (
	EventSignedIn    EventType = "SIGNED_IN"
	EventSignedOut   EventType = "SIGNED_OUT"
	EventUserUpdated EventType = "USER_UPDATED"
)

// Event is delivered to subscribers on every auth state change.
type Event struct {
	Type    EventType
	UserID  string
	Session *Session // nil for USER_UPDATED
}

// Listener receives auth events. Listeners run synchronously on the caller's goroutine.
type Listener func(Event)

// AuthUser is the identity behind a session.
type AuthUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an immutable, signed-in state. Callers carry it explicitly.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        AuthUser  `json:"user"`

	tokenID string
}

// Gateway forwards authentication calls to the store and issues session tokens.
type Gateway struct {
	store   store.Store
	tokens  *tokenIssuer
	cost    int
	revoked *cache.Cache
	now     func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewGateway creates a gateway from the auth configuration.
func NewGateway(s store.Store, cfg config.AuthConfig) *Gateway {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	g := &Gateway{
		store:     s,
		cost:      cost,
		revoked:   cache.New(ttl, 10*time.Minute),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	g.tokens = &tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: ttl, now: g.clock}
	return g
}

// WithClock replaces the clock used for token issue and validation.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

func (g *Gateway) clock() time.Time { return g.now() }

// SignUp registers an identity and signs it in.
func (g *Gateway) SignUp(ctx context.Context, email, password string) (*Session, error) {
	existing, err := g.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ts := g.now().UTC()
	identity := &model.Identity{Email: email, PasswordHash: string(hash), CreatedAt: ts, UpdatedAt: ts}
	if err := g.store.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}
	return g.startSession(identity)
}

// SignIn checks the password and starts a new session.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	identity, err := g.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return g.startSession(identity)
}

// SignOut revokes the session's token. A nil session is a no-op.
func (g *Gateway) SignOut(ctx context.Context, session *Session) error {
	if session == nil {
		return nil
	}
	if ttl := session.ExpiresAt.Sub(g.now()); ttl > 0 {
		g.revoked.Set(session.tokenID, struct{}{}, ttl)
	}
	g.emit(Event{Type: EventSignedOut, UserID: session.User.ID, Session: session})
	return nil
}

// GetSession resolves an access token. It returns nil without an error when
// the token is empty, invalid, expired, revoked, or names a deleted identity.
func (g *Gateway) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	claims, err := g.tokens.parse(accessToken)
	if err != nil {
		return nil, nil
	}
	if _, revoked := g.revoked.Get(claims.ID); revoked {
		return nil, nil
	}

	identity, err := g.store.GetIdentity(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, nil
	}
	return &Session{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        authUser(identity),
		tokenID:     claims.ID,
	}, nil
}

// GetCurrentUser returns the user behind the token, or nil when there is no session.
func (g *Gateway) GetCurrentUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	session, err := g.GetSession(ctx, accessToken)
	if err != nil || session == nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

// CreateUserProfile inserts the public profile for a signed-up identity.
func (g *Gateway) CreateUserProfile(ctx context.Context, userID, email, fullName string) (*model.User, error) {
	ts := g.now().UTC()
	return g.store.InsertUser(ctx, &model.User{
		ID:        userID,
		Email:     email,
		FullName:  fullName,
		CreatedAt: ts,
		UpdatedAt: ts,
	})
}

// GetUserProfile returns the profile or nil when none exists.
func (g *Gateway) GetUserProfile(ctx context.Context, userID string) (*model.User, error) {
	return g.store.GetUser(ctx, userID)
}

// UpdateUserProfile applies the non-nil fields of updates.
func (g *Gateway) UpdateUserProfile(ctx context.Context, userID string, updates model.UserUpdate) (*model.User, error) {
	cols := updates.Columns()
	cols["updated_at"] = g.now().UTC()
	user, err := g.store.UpdateUser(ctx, userID, cols)
	if err != nil {
		return nil, err
	}
	g.emit(Event{Type: EventUserUpdated, UserID: userID})
	return user, nil
}

// SubscribeToAuthChanges registers fn for auth events and returns a function
// that removes it.
func (g *Gateway) SubscribeToAuthChanges(fn Listener) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.listeners, id)
			g.mu.Unlock()
		})
	}
}

func (g *Gateway) startSession(identity *model.Identity) (*Session, error) {
	token, tokenID, expiresAt, err := g.tokens.issue(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	session := &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        authUser(identity),
		tokenID:     tokenID,
	}
	g.emit(Event{Type: EventSignedIn, UserID: identity.ID, Session: session})
	return session, nil
}

func (g *Gateway) emit(ev Event) {
	g.mu.RLock()
	listeners := make([]Listener, 0, len(g.listeners))
	for _, l := range g.listeners {
		listeners = append(listeners, l)
	}
	g.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

func authUser(identity *model.Identity) AuthUser {
	return AuthUser{ID: identity.ID, Email: identity.Email, CreatedAt: identity.CreatedAt}
}

// newTokenID returns a random JWT id.
func newTokenID() string {
	return uuid.NewString()
}
