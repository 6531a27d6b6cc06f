package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	tg "github.com/m3rciful/gamebot/core/telegram"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/repository/memory"
	"github.com/m3rciful/gamebot/internal/service"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	adminTg  = int64(100)
	playerTg = int64(200)
	chatID   = int64(-1001)
)

type outbox struct {
	sent   []string
	edits  []string
	toasts []string
}

func (o *outbox) last() string {
	if len(o.sent) == 0 {
		return ""
	}
	return o.sent[len(o.sent)-1]
}

// fakeCtx records outgoing traffic instead of calling the Bot API.
type fakeCtx struct {
	tele.Context
	out *outbox
}

func (f fakeCtx) Send(what interface{}, _ ...interface{}) error {
	f.out.sent = append(f.out.sent, fmt.Sprint(what))
	return nil
}

func (f fakeCtx) Edit(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.out.edits = append(f.out.edits, s)
	} else {
		f.out.edits = append(f.out.edits, "<markup>")
	}
	return nil
}

func (f fakeCtx) Respond(resp ...*tele.CallbackResponse) error {
	text := ""
	if len(resp) > 0 && resp[0] != nil {
		text = resp[0].Text
	}
	f.out.toasts = append(f.out.toasts, text)
	return nil
}

type participantLog struct{ statuses []string }

func (p *participantLog) ParticipantChanged(status string) {
	p.statuses = append(p.statuses, status)
}

type fixture struct {
	tb    *tele.Bot
	bot   *Bot
	svc   *service.Services
	obs   *participantLog
	admin *models.User
	group *models.Group
	sport *models.Sport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return testNow }

	db := memory.New()
	db.SetClock(now)
	svc := service.New(db.Store(), service.WithClock(now))
	if _, err := svc.Sports.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed sports: %v", err)
	}
	sport, err := svc.Sports.GetByName(ctx, "Футбол")
	if err != nil {
		t.Fatalf("get sport: %v", err)
	}
	admin, err := svc.Users.FindOrCreate(ctx, service.TelegramUser{ID: adminTg, Username: "captain"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	group, err := svc.Groups.CreateFromChat(ctx, chatID, "Sunday League", &admin.ID)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	store := state.NewMemoryStore(state.Options{Now: now})
	sessions := state.NewDispatcher(store)
	obs := &participantLog{}
	b := New(Deps{
		Services: svc,
		Flows:    flow.New(flow.Deps{Services: svc, Store: store, Now: now}),
		Sessions: sessions,
		Observer: obs,
	})

	tb, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return &fixture{tb: tb, bot: b, svc: svc, obs: obs, admin: admin, group: group, sport: sport}
}

func groupChat() *tele.Chat {
	return &tele.Chat{ID: chatID, Type: tele.ChatSuperGroup, Title: "Sunday League"}
}

func (f *fixture) message(from int64, chat *tele.Chat, text string) (fakeCtx, *outbox) {
	if chat == nil {
		chat = &tele.Chat{ID: from, Type: tele.ChatPrivate}
	}
	payload := ""
	if i := strings.IndexByte(text, ' '); i > 0 {
		payload = text[i+1:]
	}
	out := &outbox{}
	c := f.tb.NewContext(tele.Update{ID: 1, Message: &tele.Message{
		Sender:  &tele.User{ID: from, FirstName: "User" + strconv.FormatInt(from, 10)},
		Chat:    chat,
		Text:    text,
		Payload: payload,
	}})
	return fakeCtx{Context: c, out: out}, out
}

func (f *fixture) press(from int64, unique, payload string) (fakeCtx, *outbox) {
	out := &outbox{}
	c := f.tb.NewContext(tele.Update{ID: 2, Callback: &tele.Callback{
		ID:      "cb",
		Sender:  &tele.User{ID: from, FirstName: "User"},
		Message: &tele.Message{ID: 10, Chat: groupChat()},
		Data:    "\f" + unique + "|" + payload,
	}})
	return fakeCtx{Context: c, out: out}, out
}

func (f *fixture) command(t *testing.T, name string) tele.HandlerFunc {
	t.Helper()
	for _, cmd := range f.bot.Commands() {
		if cmd.Name() == name {
			return f.bot.guard(cmd)
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func (f *fixture) callback(t *testing.T, key string) tele.HandlerFunc {
	t.Helper()
	h, ok := f.bot.callbackHandlers()[key]
	if !ok {
		t.Fatalf("callback %q not registered", key)
	}
	return h
}

func (f *fixture) game(t *testing.T) *models.Game {
	t.Helper()
	g, err := f.svc.Games.Create(context.Background(), service.CreateGameInput{
		GroupID:         f.group.ID,
		CreatorID:       f.admin.ID,
		SportID:         f.sport.ID,
		GameDate:        testNow.Add(48 * time.Hour),
		LocationText:    "Arena",
		MinParticipants: 2,
		MaxParticipants: 10,
		Type:            models.GameTypeGame,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func TestRegisterWiresEveryKey(t *testing.T) {
	f := newFixture(t)
	reg := tg.NewRegistry()
	if err := f.bot.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got, want := len(reg.ListCallbacks()), len(f.bot.callbackHandlers()); got != want {
		t.Fatalf("callbacks = %d, want %d", got, want)
	}
	for _, cmd := range reg.ListCommands(true) {
		if cmd.Text == "seedsports" {
			t.Fatalf("operator command listed in menu")
		}
	}
	if _, _, ok := reg.LookupCommand("/newgame"); !ok {
		t.Fatalf("/newgame not registered")
	}
	if strings.Contains(view.Help(f.bot.helpLines()), "/seedsports") {
		t.Fatalf("help lists operator command")
	}
}

func TestGroupCommandRejectedInPrivate(t *testing.T) {
	f := newFixture(t)
	c, out := f.message(playerTg, nil, "/newgame")
	if err := f.command(t, "newgame")(c); err != nil {
		t.Fatalf("newgame: %v", err)
	}
	if out.last() != view.GroupOnly {
		t.Fatalf("reply = %q", out.last())
	}
}

func TestGroupAdminCommandRejectsMember(t *testing.T) {
	f := newFixture(t)
	c, out := f.message(playerTg, groupChat(), "/addlocation")
	if err := f.command(t, "addlocation")(c); err != nil {
		t.Fatalf("addlocation: %v", err)
	}
	if out.last() != view.AdminCommand {
		t.Fatalf("reply = %q", out.last())
	}
}

func TestRegisterInGroup(t *testing.T) {
	f := newFixture(t)
	register := f.command(t, "register")

	c, out := f.message(playerTg, groupChat(), "/register")
	if err := register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.last() != view.Registered("Sunday League") {
		t.Fatalf("reply = %q", out.last())
	}

	c, out = f.message(playerTg, groupChat(), "/register")
	if err := register(c); err != nil {
		t.Fatalf("register again: %v", err)
	}
	if out.last() != view.AlreadyMember {
		t.Fatalf("second reply = %q", out.last())
	}
}

func TestRegisterUnknownChatCreatesGroup(t *testing.T) {
	f := newFixture(t)
	chat := &tele.Chat{ID: -2002, Type: tele.ChatGroup, Title: "Volley"}
	c, out := f.message(playerTg, chat, "/register")
	if err := f.command(t, "register")(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.last() != view.Registered("Volley") {
		t.Fatalf("reply = %q", out.last())
	}
	g, err := f.svc.Groups.GetByChatID(context.Background(), -2002)
	if err != nil {
		t.Fatalf("group not created: %v", err)
	}
	u, err := f.svc.Users.GetByTelegramID(context.Background(), playerTg)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if ok, _ := f.svc.Groups.IsAdmin(context.Background(), u.ID, g.ID); !ok {
		t.Fatalf("registering user is not admin of the new group")
	}
}

func TestRegisterByInviteCode(t *testing.T) {
	f := newFixture(t)
	g, err := f.svc.Groups.Create(context.Background(), "Closed", f.admin.ID, true)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	c, out := f.message(playerTg, nil, "/register")
	if err := f.command(t, "register")(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.last() != registerHint {
		t.Fatalf("no-code reply = %q", out.last())
	}

	c, out = f.message(playerTg, nil, "/register NOPE")
	if err := f.command(t, "register")(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.last() != view.InviteNotFound {
		t.Fatalf("bad-code reply = %q", out.last())
	}

	c, out = f.message(playerTg, nil, "/register "+*g.InviteCode)
	if err := f.command(t, "register")(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if out.last() != view.Registered("Closed") {
		t.Fatalf("reply = %q", out.last())
	}
}

func TestCreateGroupPrivateMarker(t *testing.T) {
	f := newFixture(t)
	c, out := f.message(playerTg, nil, "/creategroup Пятничный футбол приватная")
	if err := f.command(t, "creategroup")(c); err != nil {
		t.Fatalf("creategroup: %v", err)
	}
	if !strings.Contains(out.last(), "Пятничный футбол") || !strings.Contains(out.last(), "Код приглашения") {
		t.Fatalf("reply = %q", out.last())
	}
}

func TestJoinAddsMemberAndParticipant(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)

	c, out := f.press(playerTg, view.CbJoinConfirmed, strconv.FormatInt(g.ID, 10))
	if err := f.callback(t, view.CbJoinConfirmed)(c); err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(out.toasts) != 1 || out.toasts[0] != view.JoinNotice(models.StatusConfirmed, true) {
		t.Fatalf("toasts = %q", out.toasts)
	}
	if len(out.edits) != 1 {
		t.Fatalf("card not refreshed: %q", out.edits)
	}

	ctx := context.Background()
	u, err := f.svc.Users.GetByTelegramID(ctx, playerTg)
	if err != nil {
		t.Fatalf("user not registered: %v", err)
	}
	if ok, _ := f.svc.Groups.IsMember(ctx, u.ID, f.group.ID); !ok {
		t.Fatalf("joining did not add group membership")
	}
	reloaded, err := f.svc.Games.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ConfirmedCount() != 1 {
		t.Fatalf("confirmed = %d", reloaded.ConfirmedCount())
	}
	if len(f.obs.statuses) != 1 || f.obs.statuses[0] != string(models.StatusConfirmed) {
		t.Fatalf("observer = %v", f.obs.statuses)
	}

	c, out = f.press(playerTg, view.CbJoinMaybe, strconv.FormatInt(g.ID, 10))
	if err := f.callback(t, view.CbJoinMaybe)(c); err != nil {
		t.Fatalf("maybe: %v", err)
	}
	if out.toasts[0] != view.JoinNotice(models.StatusMaybe, false) {
		t.Fatalf("status change toast = %q", out.toasts[0])
	}
}

func TestJoinStaleGame(t *testing.T) {
	f := newFixture(t)
	c, out := f.press(playerTg, view.CbJoinConfirmed, "999")
	if err := f.callback(t, view.CbJoinConfirmed)(c); err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(out.toasts) != 1 || out.toasts[0] != view.GameNotFoundShort {
		t.Fatalf("toasts = %q", out.toasts)
	}
}

func TestDeleteGameRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	g := f.game(t)
	payload := strconv.FormatInt(g.ID, 10)

	c, out := f.press(playerTg, view.CbDeleteGame, payload)
	if err := f.callback(t, view.CbDeleteGame)(c); err != nil {
		t.Fatalf("delete as member: %v", err)
	}
	if len(out.toasts) != 1 || out.toasts[0] != view.AdminsOnly {
		t.Fatalf("toasts = %q", out.toasts)
	}

	c, out = f.press(adminTg, view.CbDeleteGame, payload)
	if err := f.callback(t, view.CbDeleteGame)(c); err != nil {
		t.Fatalf("delete as admin: %v", err)
	}
	if len(out.edits) != 1 || !strings.HasPrefix(out.edits[0], view.GameDeleted) {
		t.Fatalf("edits = %q", out.edits)
	}
	if _, err := f.svc.Games.GetByID(context.Background(), g.ID); err == nil {
		t.Fatalf("game still present")
	}
}

func TestConfirmRejectsOtherUser(t *testing.T) {
	f := newFixture(t)
	c, _ := f.message(adminTg, groupChat(), "/newgame")
	if err := f.command(t, "newgame")(c); err != nil {
		t.Fatalf("newgame: %v", err)
	}

	c, out := f.press(playerTg, view.CbConfirmGame, strconv.FormatInt(adminTg, 10))
	if err := f.callback(t, view.CbConfirmGame)(c); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(out.toasts) != 1 || out.toasts[0] != notYourGame {
		t.Fatalf("toasts = %q", out.toasts)
	}
}

func TestCancelCommand(t *testing.T) {
	f := newFixture(t)
	cancel := f.command(t, "cancel")

	c, out := f.message(adminTg, groupChat(), "/cancel")
	if err := cancel(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.last() != view.NothingToCancel {
		t.Fatalf("reply = %q", out.last())
	}

	c, _ = f.message(adminTg, groupChat(), "/newtraining")
	if err := f.command(t, "newtraining")(c); err != nil {
		t.Fatalf("newtraining: %v", err)
	}
	c, out = f.message(adminTg, groupChat(), "/cancel")
	if err := cancel(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.last() != view.Cancelled {
		t.Fatalf("reply = %q", out.last())
	}
	if f.bot.sessions.ActiveFlow(c) != "" {
		t.Fatalf("session survived /cancel")
	}
}

func TestLocationButtonOutsideFlow(t *testing.T) {
	f := newFixture(t)
	c, out := f.press(adminTg, view.CbLocationSport, strconv.FormatInt(f.sport.ID, 10))
	if err := f.callback(t, view.CbLocationSport)(c); err != nil {
		t.Fatalf("location sport: %v", err)
	}
	if len(out.toasts) != 1 || out.toasts[0] != flow.ExpiredLocation {
		t.Fatalf("toasts = %q", out.toasts)
	}
}

func TestMembersRequiresMembership(t *testing.T) {
	f := newFixture(t)
	payload := strconv.FormatInt(f.group.ID, 10)

	c, out := f.press(playerTg, view.CbMembers, payload)
	if err := f.callback(t, view.CbMembers)(c); err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(out.toasts) != 1 || out.toasts[0] != view.GroupMissing {
		t.Fatalf("toasts = %q", out.toasts)
	}

	c, out = f.press(adminTg, view.CbMembers, payload)
	if err := f.callback(t, view.CbMembers)(c); err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(out.edits) != 1 || !strings.Contains(out.edits[0], "Sunday League") {
		t.Fatalf("edits = %q", out.edits)
	}
}

func TestBotAddedToChatRegistersGroup(t *testing.T) {
	f := newFixture(t)
	out := &outbox{}
	chat := &tele.Chat{ID: -3003, Type: tele.ChatSuperGroup, Title: "Basket"}
	c := fakeCtx{out: out, Context: f.tb.NewContext(tele.Update{ID: 3, MyChatMember: &tele.ChatMemberUpdate{
		Chat:          chat,
		Sender:        &tele.User{ID: playerTg, FirstName: "Inviter"},
		OldChatMember: &tele.ChatMember{Role: tele.Left, User: &tele.User{ID: 1, IsBot: true}},
		NewChatMember: &tele.ChatMember{Role: tele.Member, User: &tele.User{ID: 1, IsBot: true}},
	}})}

	if err := f.bot.onMyChatMember(c); err != nil {
		t.Fatalf("my_chat_member: %v", err)
	}
	if out.last() != view.Welcome("Basket") {
		t.Fatalf("reply = %q", out.last())
	}
	ctx := context.Background()
	g, err := f.svc.Groups.GetByChatID(ctx, -3003)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	u, err := f.svc.Users.GetByTelegramID(ctx, playerTg)
	if err != nil {
		t.Fatalf("inviter: %v", err)
	}
	if ok, _ := f.svc.Groups.IsAdmin(ctx, u.ID, g.ID); !ok {
		t.Fatalf("inviter is not admin")
	}
}

func TestAutoRegisterMiddleware(t *testing.T) {
	f := newFixture(t)
	c, _ := f.message(777, nil, "hello")
	var seen *models.User
	h := f.bot.autoRegister(func(c tele.Context) error {
		seen, _ = c.Get(userKey).(*models.User)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if seen == nil || seen.TelegramID != 777 {
		t.Fatalf("user not registered: %+v", seen)
	}
}
