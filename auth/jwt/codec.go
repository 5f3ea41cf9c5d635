// Package jwt issues and verifies the bearer tokens forohub hands out at login.
//
// Tokens are HS256-signed JWTs carrying the login as subject, the numeric
// account id as the "id" claim, and the fixed issuer "forohub".
//
//	codec, err := jwt.NewCodec(jwt.Config{Secret: secret})
//	token, err := codec.Issue(identity)
//	login, err := codec.Verify(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/forohub/auth"
)

// Issuer is the "iss" claim of every token this service issues.
const Issuer = "forohub"

var (
	// ErrTokenInvalid is returned for any token that fails verification.
	ErrTokenInvalid = errors.New("jwt: invalid token")
	// ErrTokenIssuance is returned when a token cannot be signed.
	ErrTokenIssuance = errors.New("jwt: token issuance failed")
)

var signingMethod = gojwt.SigningMethodHS256

// Claims is the payload of a forohub token.
type Claims struct {
	// UserID is the internal account id.
	UserID uint64 `json:"id"`
	gojwt.RegisteredClaims
}

// Codec signs and verifies tokens. It is read-only after construction and
// safe for concurrent use.
type Codec struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *gojwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec creates a Codec from configuration.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Codec{
		key:      []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = gojwt.NewParser(
		gojwt.WithValidMethods([]string{signingMethod.Alg()}),
		gojwt.WithIssuer(Issuer),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Lifetime returns the configured token lifetime.
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue signs a token for identity, valid from now for the configured lifetime.
func (c *Codec) Issue(identity *auth.Identity) (string, error) {
	if identity == nil || identity.Login == "" {
		return "", fmt.Errorf("%w: identity has no login", ErrTokenIssuance)
	}
	now := c.now().Truncate(time.Second)
	claims := &Claims{
		UserID: identity.ID,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   identity.Login,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}
	signed, err := gojwt.NewWithClaims(signingMethod, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenIssuance, err)
	}
	return signed, nil
}

// Verify checks token and returns its subject.
func (c *Codec) Verify(token string) (string, error) {
	claims, err := c.Claims(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Claims checks token and returns its full payload.
func (c *Codec) Claims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, c.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

func (c *Codec) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != signingMethod.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return c.key, nil
}

