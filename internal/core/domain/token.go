package domain

import (
	"context"
	"errors"
	"time"
)

// TokenPayload is the identity carried by a signed bearer token.
type TokenPayload struct {
	UserID    string    `json:"userId"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	Issuer    string    `json:"iss"`
}

// TokenErrorKind enumerates the ways verification can fail.
type TokenErrorKind int

const (
	// TokenExpired means the signature is valid but the expiry has passed.
	TokenExpired TokenErrorKind = iota + 1
	// TokenInvalid covers malformed tokens and signature mismatches.
	TokenInvalid
	// TokenInvalidPayload means the token verified but its payload is unusable.
	TokenInvalidPayload
)

var (
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenInvalid        = errors.New("invalid token signature or format")
	ErrTokenInvalidPayload = errors.New("invalid token payload")
)

// Code is the machine-readable identifier exposed to clients.
func (k TokenErrorKind) Code() string {
	switch k {
	case TokenExpired:
		return "TOKEN_EXPIRED"
	case TokenInvalid:
		return "INVALID_TOKEN"
	case TokenInvalidPayload:
		return "INVALID_PAYLOAD"
	default:
		return "UNKNOWN"
	}
}

func (k TokenErrorKind) sentinel() error {
	switch k {
	case TokenExpired:
		return ErrTokenExpired
	case TokenInvalid:
		return ErrTokenInvalid
	case TokenInvalidPayload:
		return ErrTokenInvalidPayload
	default:
		return nil
	}
}

// TokenError is returned by token verification. Exactly one Kind applies.
type TokenError struct {
	Kind   TokenErrorKind
	Reason string
	Err    error
}

// NewTokenError builds a TokenError of the given kind.
func NewTokenError(kind TokenErrorKind, reason string, cause error) *TokenError {
	return &TokenError{Kind: kind, Reason: reason, Err: cause}
}

func (e *TokenError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches the sentinel for the error's kind.
func (e *TokenError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *TokenError) Unwrap() error { return e.Err }

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the verified token payload.
func WithIdentity(ctx context.Context, p *TokenPayload) context.Context {
	return context.WithValue(ctx, identityKey{}, p)
}

// IdentityFrom returns the payload stored by WithIdentity, if any.
func IdentityFrom(ctx context.Context) (*TokenPayload, bool) {
	p, ok := ctx.Value(identityKey{}).(*TokenPayload)
	return p, ok && p != nil
}
