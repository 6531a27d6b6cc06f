package view

import (
	"fmt"
	"strconv"

	"github.com/m3rciful/gamebot/core/telegram/keyboard"
	"github.com/m3rciful/gamebot/internal/models"

	tele "gopkg.in/telebot.v4"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

func pair(a, b int64) string { return id(a) + "|" + id(b) }

func btn(text, unique string, data string) keyboard.Button {
	return keyboard.Button{Text: text, Unique: unique, Data: data}
}

// SportPicker lists sports two per row under the given callback unique.
func SportPicker(sports []models.Sport, unique string) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, len(sports))
	for i := range sports {
		buttons = append(buttons, btn(sports[i].Label(), unique, id(sports[i].ID)))
	}
	return keyboard.Grid(buttons, 2)
}

// LocationPicker offers the group's locations plus free-text entry.
func LocationPicker(locations []models.Location) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, len(locations)+1)
	for _, l := range locations {
		buttons = append(buttons, btn(l.Name, CbLocation, id(l.ID)))
	}
	buttons = append(buttons, btn("📝 Другое место", CbLocationCustom, ""))
	return keyboard.Column(buttons)
}

// LocationManagement lets an admin reuse a location or create a new one.
func LocationManagement(locations []models.Location) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, len(locations)+2)
	for _, l := range locations {
		buttons = append(buttons, btn(l.Name, CbSelectExistingLocation, id(l.ID)))
	}
	buttons = append(buttons,
		btn("➕ Создать новую локацию", CbCreateNewLocation, ""),
		btn("❌ Отменить", CbCancelLocation, ""),
	)
	return keyboard.Column(buttons)
}

// LocationConfirm is shown on the new-location preview.
func LocationConfirm() *tele.ReplyMarkup {
	return keyboard.Column([]keyboard.Button{
		btn("✅ Создать локацию", CbConfirmLocation, ""),
		btn("❌ Отменить", CbCancelLocation, ""),
	})
}

// Cancel is a single cancel button for unique.
func Cancel(unique string) *tele.ReplyMarkup {
	return keyboard.Cancel(unique)
}

// GameConfirm carries the Telegram id of the creator so only they can answer.
func GameConfirm(ownerTelegramID int64) *tele.ReplyMarkup {
	return keyboard.Rows([]keyboard.Button{
		btn("✅ Создать", CbConfirmGame, id(ownerTelegramID)),
		btn("❌ Отмена", CbCancelGame, id(ownerTelegramID)),
	})
}

func gameActionRows(gameID int64, confirmed int, isAdmin bool) [][]keyboard.Button {
	rows := [][]keyboard.Button{
		{btn(fmt.Sprintf("✅ Точно (%d)", confirmed), CbJoinConfirmed, id(gameID))},
		{btn("❓ Не точно", CbJoinMaybe, id(gameID))},
		{btn("❌ Отказаться", CbLeaveGame, id(gameID))},
		{btn("👥 Список участников", CbShowParticipants, id(gameID))},
	}
	if isAdmin {
		rows = append(rows, []keyboard.Button{btn("🗑 Удалить игру", CbDeleteGame, id(gameID))})
	}
	return rows
}

// GameActions is the sign-up keyboard under a game card.
func GameActions(gameID int64, confirmed int, isAdmin bool) *tele.ReplyMarkup {
	return keyboard.Rows(gameActionRows(gameID, confirmed, isAdmin)...)
}

func filterRow(active Filter, groupID int64) []keyboard.Button {
	label := func(f Filter, text string) string {
		if f == active {
			return "✅ " + text
		}
		return text
	}
	return []keyboard.Button{
		btn(label(FilterGames, "Игры"), CbFilterGames, id(groupID)),
		btn(label(FilterTrainings, "Тренировки"), CbFilterTrainings, id(groupID)),
		btn(label(FilterAll, "Всё"), CbFilterAll, id(groupID)),
	}
}

// FilterOnly is the filter row alone, used for empty lists.
func FilterOnly(active Filter, groupID int64) *tele.ReplyMarkup {
	return keyboard.Rows(filterRow(active, groupID))
}

// FilteredList puts the filter row above one button per event.
func FilteredList(active Filter, groupID int64, games []models.Game) *tele.ReplyMarkup {
	rows := [][]keyboard.Button{filterRow(active, groupID)}
	for i := range games {
		rows = append(rows, []keyboard.Button{btn(GameListLabel(&games[i]), CbViewGame, id(games[i].ID))})
	}
	return keyboard.Rows(rows...)
}

// FilteredActions puts the filter row above a single event's actions.
func FilteredActions(active Filter, groupID int64, g *models.Game, isAdmin bool) *tele.ReplyMarkup {
	rows := [][]keyboard.Button{filterRow(active, groupID)}
	rows = append(rows, gameActionRows(g.ID, g.ConfirmedCount(), isAdmin)...)
	return keyboard.Rows(rows...)
}

// GroupEntry is a group with its member count for list labels.
type GroupEntry struct {
	ID      int64
	Name    string
	Members int
}

// GroupList lists the user's groups.
func GroupList(groups []GroupEntry) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, len(groups))
	for _, g := range groups {
		buttons = append(buttons, btn(fmt.Sprintf("%s (%d чел.)", g.Name, g.Members), CbGroup, id(g.ID)))
	}
	return keyboard.Column(buttons)
}

// GroupMenu is the per-group menu in private chat.
func GroupMenu(groupID int64, isAdmin bool) *tele.ReplyMarkup {
	buttons := []keyboard.Button{
		btn("🎮 Игры группы", CbFilterAll, id(groupID)),
		btn("👥 Участники", CbMembers, id(groupID)),
	}
	if isAdmin {
		buttons = append(buttons, btn("⚙️ Управление", CbManage, id(groupID)))
	}
	buttons = append(buttons,
		btn("👋 Покинуть группу", CbLeaveGroup, id(groupID)),
		btn("« Назад", CbMyGroups, ""),
	)
	return keyboard.Column(buttons)
}

// BackToGroup returns to the group menu.
func BackToGroup(groupID int64) *tele.ReplyMarkup {
	return keyboard.Column([]keyboard.Button{btn("« Назад к группе", CbGroup, id(groupID))})
}

// ManageMenu is the admin menu of a group.
func ManageMenu(groupID int64, private bool) *tele.ReplyMarkup {
	buttons := []keyboard.Button{btn("👥 Управление участниками", CbManageMembers, id(groupID))}
	if private {
		buttons = append(buttons, btn("🔑 Новый код приглашения", CbRegenerateInvite, id(groupID)))
	}
	buttons = append(buttons, btn("« Назад к группе", CbGroup, id(groupID)))
	return keyboard.Column(buttons)
}

// ManageMembers offers a remove button per regular member.
func ManageMembers(groupID int64, members []models.GroupMember) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, len(members)+1)
	for _, m := range members {
		if m.IsAdmin() || m.User == nil {
			continue
		}
		buttons = append(buttons, btn("❌ "+m.User.Mention(), CbRemoveMember, pair(groupID, m.UserID)))
	}
	buttons = append(buttons, btn("« Назад", CbManage, id(groupID)))
	return keyboard.Column(buttons)
}

// EditLocationPicker lists locations for /editlocation.
func EditLocationPicker(locations []models.Location) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, len(locations))
	for _, l := range locations {
		var emojis string
		for _, s := range l.Sports() {
			emojis += s.Emoji
		}
		buttons = append(buttons, btn(emojis+" "+l.Name, CbStartEditLocation, id(l.ID)))
	}
	return keyboard.Column(buttons)
}

// LocationEditMenu offers the editable fields of a location.
func LocationEditMenu(locationID int64) *tele.ReplyMarkup {
	return keyboard.Column([]keyboard.Button{
		btn("✏️ Название", CbEditLocationName, id(locationID)),
		btn("🗺 Ссылку на карту", CbEditLocationMap, id(locationID)),
		btn("🏃 Виды спорта", CbEditLocationSports, id(locationID)),
		btn("❌ Отменить", CbCancelEditLocation, ""),
	})
}

// SportToggle marks the selected sports of a location being edited.
func SportToggle(locationID int64, sports []models.Sport, selected []int64) *tele.ReplyMarkup {
	chosen := make(map[int64]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	buttons := make([]keyboard.Button, 0, len(sports)+2)
	for i := range sports {
		label := sports[i].Label()
		if chosen[sports[i].ID] {
			label = "✅ " + label
		}
		buttons = append(buttons, btn(label, CbToggleLocationSport, pair(locationID, sports[i].ID)))
	}
	buttons = append(buttons,
		btn("💾 Сохранить", CbSaveLocationSports, id(locationID)),
		btn("❌ Отменить", CbCancelEditLocation, ""),
	)
	return keyboard.Column(buttons)
}
