package state

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/gamebot/core/logger"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Dispatcher routes free-text updates to the handler of the sender's active
// flow. It satisfies router.FSM.
type Dispatcher struct {
	store Store

	mu       sync.RWMutex
	handlers map[string]tele.HandlerFunc
}

// NewDispatcher constructs a dispatcher over store.
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store, handlers: make(map[string]tele.HandlerFunc)}
}

// Store exposes the backing store.
func (d *Dispatcher) Store() Store { return d.store }

// Handle registers the text handler of a flow.
func (d *Dispatcher) Handle(flow string, h tele.HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[flow] = h
}

func (d *Dispatcher) handler(flow string) (tele.HandlerFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[flow]
	return h, ok
}

// ActiveFlow returns the sender's live flow name, or "" when none.
func (d *Dispatcher) ActiveFlow(c tele.Context) string {
	if rec, ok := FromContext(c); ok {
		return rec.Flow
	}
	rec, ok, err := d.store.Load(tghelpers.BuildContext(c), KeyFrom(c))
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), "session", "session.load",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return ""
	}
	if !ok {
		return ""
	}
	return rec.Flow
}

// InProgress reports whether the sender has a flow with a registered handler.
func (d *Dispatcher) InProgress(c tele.Context) bool {
	flow := d.ActiveFlow(c)
	if flow == "" {
		return false
	}
	_, ok := d.handler(flow)
	return ok
}

// ManagerHandler runs the active flow's handler.
func (d *Dispatcher) ManagerHandler(c tele.Context) error {
	flow := d.ActiveFlow(c)
	h, ok := d.handler(flow)
	if !ok {
		return nil
	}
	return h(c)
}

// Cancel drops the sender's session whatever flow it holds.
func (d *Dispatcher) Cancel(c tele.Context) (string, error) {
	flow := d.ActiveFlow(c)
	if flow == "" {
		return "", nil
	}
	ctx := tghelpers.BuildContext(c)
	if err := d.store.Delete(ctx, KeyFrom(c)); err != nil {
		return flow, err
	}
	logger.Info(ctx, "session", "session.cancel",
		slog.String("status", "ok"),
		slog.String("flow", flow),
	)
	return flow, nil
}
