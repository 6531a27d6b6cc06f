package router

import (
	"errors"
	"sync"
	"testing"
	"time"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type answerCtx struct {
	tele.Context
	answers *int
}

func (a answerCtx) Respond(...*tele.CallbackResponse) error {
	*a.answers++
	return nil
}

type handled struct {
	mu    sync.Mutex
	names []string
	outs  []string
}

func (h *handled) hook(name, outcome string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.names = append(h.names, name)
	h.outs = append(h.outs, outcome)
}

func record(t *testing.T) *handled {
	t.Helper()
	h := &handled{}
	SetHandledHook(h.hook)
	t.Cleanup(func() { SetHandledHook(nil) })
	return h
}

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return b
}

func press(b *tele.Bot, data string) (answerCtx, *int) {
	n := 0
	c := b.NewContext(tele.Update{ID: 7, Callback: &tele.Callback{
		ID:      "cb",
		Sender:  &tele.User{ID: 1},
		Message: &tele.Message{ID: 3, Chat: &tele.Chat{ID: -100, Type: tele.ChatGroup}},
		Data:    data,
	}})
	return answerCtx{Context: c, answers: &n}, &n
}

func TestCallbackRouteDispatchesByKey(t *testing.T) {
	h := record(t)
	reg := tg.NewRegistry()
	var payload string
	if err := reg.RegisterCallback("join", func(c tele.Context) error {
		payload = c.Callback().Data
		return nil
	}); err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}

	c, answers := press(offlineBot(t), "\fjoin|42")
	if err := CallbackRoute(reg, CallbackOptions{}).Handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if payload == "" {
		t.Fatalf("registered handler not called")
	}
	if *answers != 1 {
		t.Fatalf("answers = %d, want 1", *answers)
	}
	if len(h.names) != 1 || h.names[0] != "callback.join" || h.outs[0] != "ok" {
		t.Fatalf("hook saw %v %v", h.names, h.outs)
	}
}

func TestCallbackRouteUnknownKeyUsesRegistryFallback(t *testing.T) {
	h := record(t)
	reg := tg.NewRegistry()
	called := false
	reg.SetCallbackNotFound(func(tele.Context) error {
		called = true
		return nil
	})

	c, _ := press(offlineBot(t), "\fstale|1")
	route := CallbackRoute(reg, CallbackOptions{NotFound: func(tele.Context) error {
		t.Fatalf("options fallback must lose to the registry fallback")
		return nil
	}})
	if err := route.Handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatalf("registry fallback not called")
	}
	if h.names[0] != "callback.stale" {
		t.Fatalf("handler name = %q", h.names[0])
	}
}

func TestCallbackRouteReportsFailure(t *testing.T) {
	h := record(t)
	reg := tg.NewRegistry()
	boom := errors.New("boom")
	_ = reg.RegisterCallback("leave", func(tele.Context) error { return boom })

	c, answers := press(offlineBot(t), "\fleave|9")
	if err := CallbackRoute(reg, CallbackOptions{}).Handler(c); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if *answers != 1 {
		t.Fatalf("failed handlers must still answer, got %d", *answers)
	}
	if h.outs[0] != "fail" {
		t.Fatalf("outcome = %q", h.outs[0])
	}
}

type fsmStub struct {
	active bool
	calls  int
}

func (f *fsmStub) InProgress(tele.Context) bool { return f.active }
func (f *fsmStub) ManagerHandler(tele.Context) error {
	f.calls++
	return nil
}

func message(b *tele.Bot, text string) tele.Context {
	return b.NewContext(tele.Update{ID: 8, Message: &tele.Message{
		ID:     4,
		Sender: &tele.User{ID: 1},
		Chat:   &tele.Chat{ID: 1, Type: tele.ChatPrivate},
		Text:   text,
	}})
}

func TestTextRoutesOrder(t *testing.T) {
	record(t)
	b := offlineBot(t)
	reg := tg.NewRegistry()
	var ran []string
	_ = reg.RegisterCommand("/help", commands.Command{Description: "help", Handler: func(tele.Context) error {
		ran = append(ran, "help")
		return nil
	}})
	_ = reg.RegisterCommand("/seed", commands.Command{Description: "seed", AdminOnly: true, Handler: func(tele.Context) error {
		ran = append(ran, "seed")
		return nil
	}})
	fsm := &fsmStub{}
	unknown := 0
	routes := TextRoutes(fsm, reg, TextOptions{UnknownText: func(tele.Context) error {
		unknown++
		return nil
	}})
	onText := routes[0].Handler

	if err := onText(message(b, "/HELP@gamebot")); err != nil {
		t.Fatalf("help: %v", err)
	}
	if err := onText(message(b, "/seed")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := onText(message(b, "hello")); err != nil {
		t.Fatalf("hello: %v", err)
	}
	fsm.active = true
	if err := onText(message(b, "/help")); err != nil {
		t.Fatalf("in flow: %v", err)
	}

	if len(ran) != 1 || ran[0] != "help" {
		t.Fatalf("commands ran = %v", ran)
	}
	if unknown != 2 {
		t.Fatalf("unknown replies = %d, want 2", unknown)
	}
	if fsm.calls != 1 {
		t.Fatalf("flow calls = %d, want 1", fsm.calls)
	}
}

func TestCommandRoutesGuardOperatorCommands(t *testing.T) {
	record(t)
	b := offlineBot(t)
	reg := tg.NewRegistry()
	seeded := false
	_ = reg.RegisterCommand("/seed", commands.Command{Description: "seed", AdminOnly: true, Hidden: true, Handler: func(tele.Context) error {
		seeded = true
		return nil
	}})
	rejected := 0
	routes := CommandRoutes(reg, CommandRouteOptions{AdminID: 99, OnAdminReject: func(tele.Context) error {
		rejected++
		return nil
	}})
	if len(routes) != 1 || routes[0].Endpoint != "/seed" {
		t.Fatalf("routes = %+v", routes)
	}
	if err := routes[0].Handler(message(b, "/seed")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded || rejected != 1 {
		t.Fatalf("non-operator ran operator command: seeded=%v rejected=%d", seeded, rejected)
	}
}

type coded struct{}

func (coded) Error() string { return "game is full" }
func (coded) Code() string  { return "game full" }

func TestErrorCode(t *testing.T) {
	if got := errorCode(coded{}); got != "GAME_FULL" {
		t.Fatalf("coded = %q", got)
	}
	if got := errorCode(&tele.Error{Code: 400, Description: "Bad Request"}); got != "HTTP_4XX" {
		t.Fatalf("api error = %q", got)
	}
	if got := errorCode(errors.New("x")); got != "ERRORSTRING" {
		t.Fatalf("plain = %q", got)
	}
}

func TestHandlerName(t *testing.T) {
	if got := handlerName("/NewGame"); got != "newgame" {
		t.Fatalf("got %q", got)
	}
	if got := handlerName("  "); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}
