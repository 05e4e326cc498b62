package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mikrotik-manager/internal/model"
)

// claims are the JWT claims carried by an access token.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// issue signs a new HS256 access token for the identity.
func (t *tokenIssuer) issue(identity *model.Identity) (token, tokenID string, expiresAt time.Time, err error) {
	issuedAt := t.now()
	expiresAt = issuedAt.Add(t.ttl)
	tokenID = newTokenID()

	c := &claims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, tokenID, expiresAt, nil
}

// parse validates the signature and expiry of an access token.
func (t *tokenIssuer) parse(token string) (*claims, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}
