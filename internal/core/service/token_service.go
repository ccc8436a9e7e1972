package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/univas/vaccination-scheduling/internal/core/domain"
)

const (
	DefaultTokenTTL = time.Hour
	DefaultIssuer   = "univas-enfermagem-api"
)

// tokenClaims is the JWT body. A body that is not a JSON object decodes
// without error and is flagged so Verify can report an invalid payload
// instead of a malformed token.
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims

	notObject bool
}

func (c *tokenClaims) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) == 0 || trimmed[0] != '{' {
		c.notObject = true
		return nil
	}
	type plain tokenClaims
	return json.Unmarshal(b, (*plain)(c))
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	defaultTTL time.Duration
	now        func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithClock sets the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenService(secret string, defaultTTL time.Duration, opts ...TokenOption) *TokenService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	s := &TokenService{
		secret:     []byte(secret),
		issuer:     DefaultIssuer,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token whose subject is payload.UserID.
func (s *TokenService) Issue(payload domain.TokenPayload, expiresIn time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("token service: signing secret is not configured")
	}
	if payload.UserID == "" {
		return "", errors.New("token service: payload has no user id")
	}
	if expiresIn <= 0 {
		expiresIn = s.defaultTTL
	}

	now := s.now()
	claims := tokenClaims{
		UserID: payload.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature, expiry and payload of token. Every failure
// is a *domain.TokenError except a missing signing secret.
func (s *TokenService) Verify(token string) (*domain.TokenPayload, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("token service: signing secret is not configured")
	}

	claims := &tokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.NewTokenError(domain.TokenExpired, "", err)
		}
		return nil, domain.NewTokenError(domain.TokenInvalid, "", err)
	}

	if claims.notObject {
		return nil, domain.NewTokenError(domain.TokenInvalidPayload, "token payload must be an object, not a string", nil)
	}
	if claims.UserID == "" {
		return nil, domain.NewTokenError(domain.TokenInvalidPayload, "token payload is missing userId", nil)
	}
	if claims.Issuer != s.issuer {
		return nil, domain.NewTokenError(domain.TokenInvalid, "unexpected issuer", nil)
	}

	payload := &domain.TokenPayload{
		UserID: claims.UserID,
		Issuer: claims.Issuer,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return payload, nil
}
