package bot

import (
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	tg "github.com/m3rciful/gamebot/core/telegram"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/core/telegram/middleware"
	"github.com/m3rciful/gamebot/core/telegram/router"
	"github.com/m3rciful/gamebot/core/telegram/state"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

// callbackHandlers maps every inline button key to its handler.
func (b *Bot) callbackHandlers() map[string]tele.HandlerFunc {
	inLocation := middleware.State(b.sessions, b.expired(flow.ExpiredLocation), flow.NameLocation)
	inEdit := middleware.State(b.sessions, b.expired(flow.ExpiredEdit), flow.NameLocationEdit)

	return map[string]tele.HandlerFunc{
		view.CbSport:          b.onSport,
		view.CbLocation:       b.onLocation,
		view.CbLocationCustom: b.onCustomLocation,
		view.CbConfirmGame:    b.onConfirmEvent,
		view.CbCancelGame:     b.onCancelEvent,

		view.CbJoinConfirmed:    b.onJoin(models.StatusConfirmed),
		view.CbJoinMaybe:        b.onJoin(models.StatusMaybe),
		view.CbLeaveGame:        b.onLeave,
		view.CbShowParticipants: b.onShowParticipants,
		view.CbViewGame:         b.onViewGame,
		view.CbDeleteGame:       b.onDeleteGame,

		view.CbFilterGames:     b.onFilter(view.FilterGames),
		view.CbFilterTrainings: b.onFilter(view.FilterTrainings),
		view.CbFilterAll:       b.onFilter(view.FilterAll),

		view.CbGroup:            b.onGroup,
		view.CbMyGroups:         b.onMyGroups,
		view.CbMembers:          b.onMembers,
		view.CbLeaveGroup:       b.onLeaveGroup,
		view.CbRemoveMember:     b.onRemoveMember,
		view.CbManage:           b.onManage,
		view.CbManageMembers:    b.onManageMembers,
		view.CbRegenerateInvite: b.onRegenerateInvite,

		view.CbLocationSport:          inLocation(b.onLocationSport),
		view.CbSelectExistingLocation: inLocation(b.onSelectExistingLocation),
		view.CbCreateNewLocation:      inLocation(b.onCreateNewLocation),
		view.CbConfirmLocation:        inLocation(b.onConfirmLocation),
		view.CbCancelLocation:         inLocation(b.onCancelLocation),

		view.CbStartEditLocation:   b.onStartEditLocation,
		view.CbEditLocationName:    inEdit(b.onEditLocationName),
		view.CbEditLocationMap:     inEdit(b.onEditLocationMap),
		view.CbEditLocationSports:  inEdit(b.onEditLocationSports),
		view.CbToggleLocationSport: inEdit(b.onToggleLocationSport),
		view.CbSaveLocationSports:  inEdit(b.onSaveLocationSports),
		view.CbCancelEditLocation:  inEdit(b.onCancelEditLocation),
	}
}

func (b *Bot) expired(text string) tele.HandlerFunc {
	return func(c tele.Context) error { return b.notice(c, text) }
}

// Routes builds the endpoint table for reg. Operator commands are limited to
// operatorID.
func (b *Bot) Routes(reg *tg.Registry, operatorID int64) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: operatorID,
		OnAdminReject: func(c tele.Context) error {
			return b.say(c, view.AdminCommand)
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(b.sessions, reg, router.TextOptions{
		UnknownText:     b.fallbacks().UnknownText(),
		UnknownDocument: b.fallbacks().UnknownDocument(),
	},
		state.WithSession(b.sessions.Store()),
	)...)
	routes = append(routes, tg.Route{
		Endpoint: tele.OnMyChatMember,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(b.onMyChatMember)),
	})
	return routes
}

// Middleware registers every human sender before the handler runs.
func (b *Bot) Middleware() tg.Middleware {
	return tg.Middleware{Name: "autoregister", Use: b.autoRegister}
}

func (b *Bot) autoRegister(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil || sender.IsBot {
			return next(c)
		}
		ctx := tghelpers.BuildContext(c)
		u, err := b.svc.Users.FindOrCreate(ctx, telegramUser(sender))
		if err != nil {
			logger.Warn(ctx, "bot", "user.register",
				slog.String("status", "fail"),
				slog.Int64("tg_id", sender.ID),
				slog.String("err", err.Error()),
			)
			return next(c)
		}
		c.Set(userKey, u)
		return next(c)
	}
}
