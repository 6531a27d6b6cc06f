package metrics

import (
	"testing"
	"time"

	"github.com/m3rciful/gamebot/internal/flow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedSize int

func (f fixedSize) Len() int { return int(f) }

func TestFlowEventCountsCreatedGames(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.FlowEvent(flow.NameGame, flow.EventStarted)
	m.FlowEvent(flow.NameGame, flow.EventCompleted)
	m.FlowEvent(flow.NameTraining, flow.EventCompleted)
	m.FlowEvent(flow.NameLocation, flow.EventCompleted)

	if got := testutil.ToFloat64(m.Flows.WithLabelValues(flow.NameGame, flow.EventStarted)); got != 1 {
		t.Fatalf("started = %v", got)
	}
	if got := testutil.ToFloat64(m.GamesCreated.WithLabelValues("GAME")); got != 1 {
		t.Fatalf("games created = %v", got)
	}
	if got := testutil.ToFloat64(m.GamesCreated.WithLabelValues("TRAINING")); got != 1 {
		t.Fatalf("trainings created = %v", got)
	}
	if got := testutil.CollectAndCount(m.GamesCreated); got != 2 {
		t.Fatalf("location flow counted as game: %d series", got)
	}
}

func TestHandledAndParticipants(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Handled("callback.join_confirmed", "ok", 15*time.Millisecond)
	m.Handled("callback.join_confirmed", "ok", 5*time.Millisecond)
	m.ParticipantChanged("left")
	m.SessionsSwept(3)

	if got := testutil.ToFloat64(m.Updates.WithLabelValues("callback.join_confirmed", "ok")); got != 2 {
		t.Fatalf("updates = %v", got)
	}
	if got := testutil.ToFloat64(m.Participants.WithLabelValues("left")); got != 1 {
		t.Fatalf("participants = %v", got)
	}
	if got := testutil.ToFloat64(m.Swept); got != 3 {
		t.Fatalf("swept = %v", got)
	}
}

func TestTrackSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	TrackSessions(reg, fixedSize(4))
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 1 || families[0].GetMetric()[0].GetGauge().GetValue() != 4 {
		t.Fatalf("families = %v", families)
	}
}

type fixedErrors uint64

func (f fixedErrors) ErrorCount() uint64 { return uint64(f) }

func TestTrackSendErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	TrackSendErrors(reg, fixedErrors(3))
	n, err := testutil.GatherAndCount(reg, "gamebot_send_errors_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("series = %d", n)
	}
}
