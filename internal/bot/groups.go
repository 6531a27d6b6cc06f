package bot

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/gamebot/core/logger"
	"github.com/m3rciful/gamebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
	"github.com/m3rciful/gamebot/internal/flow"
	"github.com/m3rciful/gamebot/internal/models"
	"github.com/m3rciful/gamebot/internal/view"

	tele "gopkg.in/telebot.v4"
)

const (
	msgLeftGroupNotice   = "Вы вышли из группы"
	msgMemberRemoved     = "Участник удален из группы"
	msgRemoveAdminsOnly  = "⛔ Только администраторы могут удалять участников"
	msgInviteOnlyPrivate = "ℹ️ У публичной группы нет кода приглашения"
)

func (b *Bot) groupList(c tele.Context) (flow.Reply, error) {
	ctx := tghelpers.BuildContext(c)
	u, err := b.currentUser(c)
	if err != nil {
		return flow.Reply{}, err
	}
	groups, err := b.svc.Groups.UserGroups(ctx, u.ID)
	if err != nil {
		return flow.Reply{}, err
	}
	if len(groups) == 0 {
		return flow.Reply{Text: view.NoGroups}, nil
	}
	entries := make([]view.GroupEntry, 0, len(groups))
	for _, g := range groups {
		n, err := b.svc.Groups.MemberCount(ctx, g.ID)
		if err != nil {
			return flow.Reply{}, err
		}
		entries = append(entries, view.GroupEntry{ID: g.ID, Name: g.Name, Members: n})
	}
	return flow.Reply{Text: view.GroupsHeader(len(groups)), Markup: view.GroupList(entries)}, nil
}

// memberGroup loads the group named by the first payload id when the sender
// belongs to it. A nil group means the notice was already sent.
func (b *Bot) memberGroup(c tele.Context, groupID int64) (*models.Group, *models.User, error) {
	ctx := tghelpers.BuildContext(c)
	u, err := b.currentUser(c)
	if err != nil {
		return nil, nil, b.respond(c, failure(c), err)
	}
	g, err := b.svc.Groups.GetByID(ctx, groupID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, b.notice(c, view.GroupMissing)
	}
	if err != nil {
		return nil, nil, b.respond(c, failure(c), err)
	}
	member, err := b.svc.Groups.IsMember(ctx, u.ID, g.ID)
	if err != nil {
		return nil, nil, b.respond(c, failure(c), err)
	}
	if !member {
		return nil, nil, b.notice(c, view.GroupMissing)
	}
	return g, u, nil
}

// adminGroup is memberGroup restricted to group admins.
func (b *Bot) adminGroup(c tele.Context, groupID int64, deny string) (*models.Group, error) {
	g, u, err := b.memberGroup(c, groupID)
	if g == nil {
		return nil, err
	}
	admin, err := b.svc.Groups.IsAdmin(tghelpers.BuildContext(c), u.ID, g.ID)
	if err != nil {
		return nil, b.respond(c, failure(c), err)
	}
	if !admin {
		return nil, b.notice(c, deny)
	}
	return g, nil
}

func groupPayload(c tele.Context) int64 {
	id, err := callbacks.Of(c).Int64()
	if err != nil {
		return 0
	}
	return id
}

func (b *Bot) onGroup(c tele.Context) error {
	g, u, err := b.memberGroup(c, groupPayload(c))
	if g == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	members, err := b.svc.Groups.MemberCount(ctx, g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	upcoming, err := b.svc.Groups.UpcomingGamesCount(ctx, g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	admin, err := b.svc.Groups.IsAdmin(ctx, u.ID, g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.send(c, flow.Reply{
		Text:   view.GroupMenuText(g, members, upcoming, admin),
		Markup: view.GroupMenu(g.ID, admin),
		Edit:   true,
	})
}

func (b *Bot) onMyGroups(c tele.Context) error {
	r, err := b.groupList(c)
	r.Edit = true
	return b.respond(c, r, err)
}

func (b *Bot) onMembers(c tele.Context) error {
	g, _, err := b.memberGroup(c, groupPayload(c))
	if g == nil {
		return err
	}
	members, err := b.svc.Groups.Members(tghelpers.BuildContext(c), g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.send(c, flow.Reply{
		Text:   view.MembersText("👥 Участники группы \""+g.Name+"\":", members),
		Markup: view.BackToGroup(g.ID),
		Edit:   true,
	})
}

func (b *Bot) onLeaveGroup(c tele.Context) error {
	g, u, err := b.memberGroup(c, groupPayload(c))
	if g == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if err := b.svc.Groups.RemoveMember(ctx, u.ID, g.ID); err != nil {
		return b.respond(c, failure(c), err)
	}
	logger.Info(ctx, "bot", "member.leave",
		slog.Int64("group_id", g.ID),
		slog.Int64("user_id", u.ID),
	)
	return b.send(c, flow.Reply{Text: view.LeftGroup(g.Name), Edit: true, Notice: msgLeftGroupNotice})
}

func (b *Bot) onRemoveMember(c tele.Context) error {
	groupID, userID, err := callbacks.Of(c).Int64Pair()
	if err != nil {
		return b.notice(c, view.GroupMissing)
	}
	g, err := b.adminGroup(c, groupID, msgRemoveAdminsOnly)
	if g == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if err := b.svc.Groups.RemoveMember(ctx, userID, g.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return b.respond(c, failure(c), err)
	}
	members, err := b.svc.Groups.Members(ctx, g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.send(c, flow.Reply{
		Text:   view.MembersText("👥 Участники группы:", members),
		Markup: view.ManageMembers(g.ID, members),
		Edit:   true,
		Notice: msgMemberRemoved,
	})
}

func (b *Bot) onManage(c tele.Context) error {
	g, err := b.adminGroup(c, groupPayload(c), view.AdminsOnly)
	if g == nil {
		return err
	}
	return b.send(c, flow.Reply{
		Text:   view.ManageText(g.Name),
		Markup: view.ManageMenu(g.ID, g.IsPrivate),
		Edit:   true,
	})
}

func (b *Bot) onManageMembers(c tele.Context) error {
	g, err := b.adminGroup(c, groupPayload(c), view.AdminsOnly)
	if g == nil {
		return err
	}
	members, err := b.svc.Groups.Members(tghelpers.BuildContext(c), g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.send(c, flow.Reply{
		Text:   view.MembersText("👥 Участники группы:", members),
		Markup: view.ManageMembers(g.ID, members),
		Edit:   true,
	})
}

func (b *Bot) onRegenerateInvite(c tele.Context) error {
	g, err := b.adminGroup(c, groupPayload(c), view.AdminsOnly)
	if g == nil {
		return err
	}
	if !g.IsPrivate {
		return b.notice(c, msgInviteOnlyPrivate)
	}
	code, err := b.svc.Groups.RegenerateInviteCode(tghelpers.BuildContext(c), g.ID)
	if err != nil {
		return b.respond(c, failure(c), err)
	}
	return b.send(c, flow.Reply{Text: view.InviteRegenerated(code), Markup: view.BackToGroup(g.ID), Edit: true})
}
