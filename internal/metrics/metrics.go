// Package metrics exposes the bot's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors fed by the router, the flows and the bot.
type Metrics struct {
	Updates       *prometheus.CounterVec
	HandleSeconds *prometheus.HistogramVec
	Flows         *prometheus.CounterVec
	Participants  *prometheus.CounterVec
	GamesCreated  *prometheus.CounterVec
	Swept         prometheus.Counter
}

// Sizer reports how many sessions a store holds.
type Sizer interface {
	Len() int
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gamebot_updates_handled_total", Help: "Updates handled by handler and outcome"},
			[]string{"handler", "outcome"},
		),
		HandleSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "gamebot_handler_duration_seconds", Help: "Handler latency", Buckets: prometheus.DefBuckets},
			[]string{"handler"},
		),
		Flows: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gamebot_flow_events_total", Help: "Conversation flows started, completed and cancelled"},
			[]string{"flow", "event"},
		),
		Participants: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gamebot_participant_changes_total", Help: "Sign-up changes by status"},
			[]string{"status"},
		),
		GamesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "gamebot_games_created_total", Help: "Games and trainings created"},
			[]string{"type"},
		),
		Swept: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "gamebot_sessions_expired_total", Help: "Sessions removed by the janitor"},
		),
	}
	reg.MustRegister(m.Updates, m.HandleSeconds, m.Flows, m.Participants, m.GamesCreated, m.Swept)
	return m
}

// Handled records one routed update.
func (m *Metrics) Handled(handler, outcome string, took time.Duration) {
	m.Updates.WithLabelValues(handler, outcome).Inc()
	m.HandleSeconds.WithLabelValues(handler).Observe(took.Seconds())
}

// FlowEvent counts flow lifecycle events; a completed creation flow also
// counts the created game.
func (m *Metrics) FlowEvent(name, event string) {
	m.Flows.WithLabelValues(name, event).Inc()
	if event != flow.EventCompleted {
		return
	}
	switch name {
	case flow.NameGame:
		m.GamesCreated.WithLabelValues(string(models.GameTypeGame)).Inc()
	case flow.NameTraining:
		m.GamesCreated.WithLabelValues(string(models.GameTypeTraining)).Inc()
	}
}

// ParticipantChanged counts a join, status change or leave.
func (m *Metrics) ParticipantChanged(status string) {
	m.Participants.WithLabelValues(status).Inc()
}

// SessionsSwept counts sessions dropped by one janitor sweep.
func (m *Metrics) SessionsSwept(removed int) {
	m.Swept.Add(float64(removed))
}

// TrackSessions exports the store size as a gauge read at scrape time.
func TrackSessions(reg prometheus.Registerer, s Sizer) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "gamebot_sessions", Help: "Stored conversation sessions"},
		func() float64 { return float64(s.Len()) },
	))
}

// ErrorCounter reports failed outbound sends.
type ErrorCounter interface {
	ErrorCount() uint64
}

// TrackSendErrors exports the outbound dispatcher's failure count.
func TrackSendErrors(reg prometheus.Registerer, c ErrorCounter) {
	reg.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{Name: "gamebot_send_errors_total", Help: "Telegram sends that failed after retries"},
		func() float64 { return float64(c.ErrorCount()) },
	))
}
