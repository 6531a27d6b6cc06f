package bot

import (
	"context"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

// onMyChatMember reacts to the bot being added to or removed from a chat.
// Joining an unknown chat registers it as a group with the inviter as admin.
func (b *Bot) onMyChatMember(c tele.Context) error {
	upd := c.ChatMember()
	chat := c.Chat()
	if upd == nil || upd.NewChatMember == nil || chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}
	tghelpers.WithHandler(c, "chat_member.self")
	ctx := tghelpers.BuildContext(c)
	role := upd.NewChatMember.Role

	switch role {
	case tele.Left, tele.Kicked:
		logger.Info(ctx, "bot", "chat.leave",
			slog.Int64("chat_id", chat.ID),
			slog.String("role", string(role)),
		)
		return nil
	case tele.Member, tele.Administrator:
	default:
		return nil
	}

	g, err := b.chatGroup(c)
	if err != nil {
		return err
	}
	if g == nil {
		var creator *int64
		if s := c.Sender(); s != nil && !s.IsBot {
			u, err := b.currentUser(c)
			if err != nil {
				return err
			}
			creator = &u.ID
		}
		if g, err = b.svc.Groups.CreateFromChat(ctx, chat.ID, chat.Title, creator); err != nil {
			return err
		}
		if err := b.say(c, view.Welcome(chat.Title)); err != nil {
			return err
		}
	}

	if role == tele.Administrator {
		b.syncChatAdmins(ctx, c, g)
	}
	return nil
}

// syncChatAdmins mirrors the chat's human administrators into the group.
func (b *Bot) syncChatAdmins(ctx context.Context, c tele.Context, g *models.Group) {
	admins, err := c.Bot().AdminsOf(c.Chat())
	if err != nil {
		logger.Warn(ctx, "bot", "admins.sync",
			slog.String("status", "fail"),
			slog.Int64("group_id", g.ID),
			slog.String("err", err.Error()),
		)
		return
	}
	ids := make([]int64, 0, len(admins))
	for _, m := range admins {
		if m.User == nil || m.User.IsBot {
			continue
		}
		u, err := b.svc.Users.FindOrCreate(ctx, telegramUser(m.User))
		if err != nil {
			logger.Warn(ctx, "bot", "admins.sync",
				slog.String("status", "fail"),
				slog.Int64("tg_id", m.User.ID),
				slog.String("err", err.Error()),
			)
			continue
		}
		ids = append(ids, u.ID)
	}
	if err := b.svc.Groups.SyncMembers(ctx, g.ID, ids); err != nil {
		logger.Warn(ctx, "bot", "admins.sync",
			slog.String("status", "fail"),
			slog.Int64("group_id", g.ID),
			slog.String("err", err.Error()),
		)
		return
	}
	for _, id := range ids {
		if err := b.svc.Groups.PromoteToAdmin(ctx, id, g.ID); err != nil {
			logger.Warn(ctx, "bot", "admins.promote",
				slog.String("status", "fail"),
				slog.Int64("user_id", id),
				slog.String("err", err.Error()),
			)
		}
	}
	logger.Info(ctx, "bot", "admins.sync",
		slog.String("status", "ok"),
		slog.Int64("group_id", g.ID),
		slog.Int("admins", len(ids)),
	)
}
