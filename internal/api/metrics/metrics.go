// Package metrics defines and registers all custom Prometheus metrics for the
// expense system API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "ok" or "denied"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// SignUpsTotal counts completed account registrations.
var SignUpsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ups_total",
		Help:      "Total number of accounts created.",
	},
)

// ResetCodesIssuedTotal counts password recovery codes issued.
// Label:
//   - mode: "stored" (persisted before return) or "degraded" (storage down,
//     code returned anyway)
var ResetCodesIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_codes_issued_total",
		Help:      "Total number of password recovery codes issued, by persistence mode.",
	},
	[]string{"mode"},
)

// ResetFailuresTotal counts rejected recovery attempts.
// Label:
//   - reason: "forbidden", "bad_format", "invalid_code", "expired"
var ResetFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_failures_total",
		Help:      "Total number of rejected password recovery attempts, by reason.",
	},
	[]string{"reason"},
)

// ── Expense metrics ───────────────────────────────────────────────────────────

// ExpenseReviewsTotal counts review decisions applied to expenses.
// Label:
//   - decision: the resulting status ("approved", "rejected", "reimbursed")
var ExpenseReviewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expense_reviews_total",
		Help:      "Total number of expense review decisions, by resulting status.",
	},
	[]string{"decision"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationQueueDepth tracks the number of notifications waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
