// Package token issues and validates the bearer tokens callers use against
// the check API. Tokens are obtained by exchanging a pre-shared API key; the
// caller identity inside the token keys sessions and run slots.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "numcheck/pkg/domain-errors"
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	CallerID string `json:"caller_id"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(signingKey, issuer, audience string, opts ...Option) *Service {
	s := &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		ttl:        time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a signed access token for the caller and returns it with its
// expiry time.
func (s *Service) Issue(callerID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CallerID: callerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token string, returning its claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.CallerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Exchanger verifies pre-shared API keys against their bcrypt hashes and
// hands out access tokens. Keys are stored hashed so a leaked configuration
// does not leak credentials.
type Exchanger struct {
	tokens *Service

	// keyHashes maps caller ID to the bcrypt hash of that caller's API key.
	keyHashes map[string]string
}

func NewExchanger(tokens *Service, keyHashes map[string]string) *Exchanger {
	return &Exchanger{tokens: tokens, keyHashes: keyHashes}
}

// HashAPIKey produces the bcrypt hash stored in configuration.
func HashAPIKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Exchange verifies the (caller, key) pair and issues an access token.
func (e *Exchanger) Exchange(callerID, apiKey string) (string, time.Time, error) {
	hash, ok := e.keyHashes[callerID]
	if !ok {
		// Burn a comparison anyway so unknown callers cost the same as bad keys.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(apiKey))
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)); err != nil {
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return e.tokens.Issue(callerID)
}
