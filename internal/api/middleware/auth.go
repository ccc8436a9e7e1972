package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/univas/vaccination-scheduling/internal/api/metrics"
	"github.com/univas/vaccination-scheduling/internal/core/domain"
	"github.com/univas/vaccination-scheduling/internal/core/ports"
)

const (
	bearerPrefix = "Bearer "
	identityKey  = "identity"

	msgMissingHeader  = "Missing or invalid Authorization header. Expected format: 'Bearer <token>'"
	msgEmptyToken     = "Token is empty in Authorization header"
	msgTokenExpired   = "Token has expired. Please login again."
	msgTokenInvalid   = "Invalid token signature or format"
	msgInvalidPayload = "Invalid token payload"
)

// authError is the 401 body. Message and Code are omitted when empty.
type authError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Auth requires a verified bearer token on every request it wraps.
//
// Header problems are reported with a fixed message in every environment.
// Token failures carry their message and code only when production is false.
// Anything the verifier returns besides a *domain.TokenError is logged and
// answered with a bare Unauthorized.
func Auth(verifier ports.TokenVerifier, production bool, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return reject(c, "MISSING_HEADER", authError{Error: "Unauthorized", Message: msgMissingHeader})
			}

			token := strings.Split(header, " ")[1]
			if token == "" {
				return reject(c, "EMPTY_TOKEN", authError{Error: "Unauthorized", Message: msgEmptyToken})
			}

			payload, err := verifier.Verify(token)
			if err != nil {
				var te *domain.TokenError
				if !errors.As(err, &te) {
					log.Error().Err(err).Str("path", c.Path()).Msg("unexpected authentication error")
					return reject(c, "UNEXPECTED", authError{Error: "Unauthorized"})
				}

				code := te.Kind.Code()
				if production {
					return reject(c, code, authError{Error: "Unauthorized"})
				}
				return reject(c, code, authError{Error: "Unauthorized", Message: tokenMessage(te), Code: code})
			}

			c.Set(identityKey, payload)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), payload)))

			log.Debug().Str("user_id", payload.UserID).Msg("authenticated request")
			return next(c)
		}
	}
}

// Identity returns the payload attached by Auth.
func Identity(c echo.Context) (*domain.TokenPayload, bool) {
	p, ok := c.Get(identityKey).(*domain.TokenPayload)
	return p, ok && p != nil
}

func tokenMessage(te *domain.TokenError) string {
	switch te.Kind {
	case domain.TokenExpired:
		return msgTokenExpired
	case domain.TokenInvalidPayload:
		if te.Reason != "" {
			return te.Reason
		}
		return msgInvalidPayload
	default:
		return msgTokenInvalid
	}
}

func reject(c echo.Context, code string, body authError) error {
	metrics.AuthFailuresTotal.WithLabelValues(code).Inc()
	return c.JSON(http.StatusUnauthorized, body)
}
