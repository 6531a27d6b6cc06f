package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/gamebot/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

type stubGames struct {
	games []models.Game
	err   error
	asked int64
}

func (s *stubGames) Upcoming(_ context.Context, groupID int64) ([]models.Game, error) {
	s.asked = groupID
	return s.games, s.err
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ok := New(Options{Ping: func(context.Context) error { return nil }, Gatherer: prometheus.NewRegistry()})
	if rec := get(t, ok.Handler(), "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthy status = %d", rec.Code)
	}

	down := New(Options{Ping: func(context.Context) error { return errors.New("no db") }, Gatherer: prometheus.NewRegistry()})
	if rec := get(t, down.Handler(), "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy status = %d", rec.Code)
	}
}

func TestGroupGames(t *testing.T) {
	games := &stubGames{games: []models.Game{{
		ID:              7,
		Type:            models.GameTypeGame,
		GameDate:        time.Date(2026, 3, 3, 19, 0, 0, 0, time.UTC),
		LocationText:    "Arena",
		MinParticipants: 2,
		MaxParticipants: 10,
		Sport:           &models.Sport{Name: "Футбол"},
		Participants: []models.GameParticipant{
			{Status: models.StatusConfirmed},
			{Status: models.StatusMaybe},
		},
	}}}
	s := New(Options{Games: games, Gatherer: prometheus.NewRegistry()})

	rec := get(t, s.Handler(), "/api/groups/42/games")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if games.asked != 42 {
		t.Fatalf("group id = %d", games.asked)
	}
	var body struct {
		Data []gameResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("games = %d", len(body.Data))
	}
	g := body.Data[0]
	if g.ID != 7 || g.Sport != "Футбол" || g.Location != "Arena" || g.Confirmed != 1 || g.Maybe != 1 {
		t.Fatalf("game = %+v", g)
	}

	if rec := get(t, s.Handler(), "/api/groups/abc/games"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
}

func TestGroupGamesFailure(t *testing.T) {
	s := New(Options{Games: &stubGames{err: errors.New("boom")}, Gatherer: prometheus.NewRegistry()})
	if rec := get(t, s.Handler(), "/api/groups/1/games"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := New(Options{CORSOrigins: []string{"https://dash.example.com"}, Gatherer: prometheus.NewRegistry()})
	rec := get(t, s.Handler(), "/healthz", "Origin", "https://dash.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Fatalf("allow origin = %q", got)
	}
	rec = get(t, s.Handler(), "/healthz", "Origin", "https://evil.example.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "ops_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	s := New(Options{Gatherer: reg})
	rec := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ops_test_total 1") {
		t.Fatalf("metrics body missing counter: %s", rec.Body.String())
	}
}
