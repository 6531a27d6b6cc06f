// Package ops serves health, metrics and read-only game data over HTTP.
package ops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// GameLister returns the upcoming games of a group.
type GameLister interface {
	Upcoming(ctx context.Context, groupID int64) ([]models.Game, error)
}

// Options configures the server.
type Options struct {
	Listen      string
	CORSOrigins []string
	Ping        func(ctx context.Context) error
	Games       GameLister
	Gatherer    prometheus.Gatherer
}

// Server is the operational HTTP endpoint.
type Server struct {
	opts    Options
	handler http.Handler
}

// New builds the router. A nil Gatherer serves the default registry.
func New(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{opts: opts}
	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	api := router.Group("/api")
	{
		api.GET("/groups/:id/games", s.groupGames)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	s.handler = c.Handler(router)
	return s
}

// Handler exposes the CORS-wrapped router.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info(ctx, "ops", "http.listen", slog.String("addr", s.opts.Listen))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	if s.opts.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "fail", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type gameResponse struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	Sport           string    `json:"sport,omitempty"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location"`
	Confirmed       int       `json:"confirmed"`
	Maybe           int       `json:"maybe"`
	MinParticipants int       `json:"min_participants"`
	MaxParticipants int       `json:"max_participants"`
	Cost            *float64  `json:"cost,omitempty"`
}

func newGameResponse(g *models.Game) gameResponse {
	r := gameResponse{
		ID:              g.ID,
		Type:            string(g.Type),
		Date:            g.GameDate,
		Location:        g.LocationName(),
		Confirmed:       g.ConfirmedCount(),
		Maybe:           g.MaybeCount(),
		MinParticipants: g.MinParticipants,
		MaxParticipants: g.MaxParticipants,
		Cost:            g.Cost,
	}
	if g.Sport != nil {
		r.Sport = g.Sport.Name
	}
	return r
}

func (s *Server) groupGames(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	if s.opts.Games == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "games unavailable"})
		return
	}
	games, err := s.opts.Games.Upcoming(c.Request.Context(), id)
	if err != nil {
		logger.Warn(c.Request.Context(), "ops", "games.list",
			slog.String("status", "fail"),
			slog.Int64("group_id", id),
			slog.String("err", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load games"})
		return
	}
	out := make([]gameResponse, 0, len(games))
	for i := range games {
		out = append(out, newGameResponse(&games[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
