// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ActionsScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_deferred_actions_scheduled_total",
	Help: "Deferred reversals persisted, by kind",
}, []string{"kind"})

var ActionsFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_deferred_actions_fired_total",
	Help: "Deferred reversals executed, by kind and outcome",
}, []string{"kind", "outcome"})

var ActionsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_deferred_actions_cancelled_total",
	Help: "Deferred reversals cancelled before firing, by kind",
}, []string{"kind"})

var ActionsPending = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pancymod_deferred_actions_pending",
	Help: "Deferred reversals currently armed",
})

var ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_moderation_actions_total",
	Help: "Audit records written, by action",
}, []string{"action"})

var ModerationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_moderation_errors_total",
	Help: "Moderation requests that ended in an error, by operation",
}, []string{"operation"})

var CommandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_commands_executed_total",
	Help: "Slash commands dispatched, by command name",
}, []string{"command"})
