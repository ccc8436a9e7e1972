// Package metrics defines the custom Prometheus collectors of the vaccination
// scheduling API. It is the single source of truth for metric names, labels
// and help strings.
//
// Collectors are registered with the default registry through promauto when
// the package is imported; echoprometheus serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vaccination"

// ── Registration metrics ──────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: EMPLOYEE, NURSE or MANAGER
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered, by role.",
	},
	[]string{"role"},
)

// RegistrationFailuresTotal counts rejected registrations.
// Label:
//   - reason: "invalid_role", "duplicate_email", "duplicate_cpf",
//     "duplicate_coren", "missing_coren", "validation" or "internal"
var RegistrationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_failures_total",
		Help:      "Total number of rejected user registrations, by reason.",
	},
	[]string{"reason"},
)

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthFailuresTotal counts requests rejected by the bearer-token middleware.
// Label:
//   - code: "MISSING_HEADER", "EMPTY_TOKEN", "TOKEN_EXPIRED", "INVALID_TOKEN",
//     "INVALID_PAYLOAD" or "UNEXPECTED"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by authentication, by code.",
	},
	[]string{"code"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "inactive" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
