package view

import (
	"fmt"
	"strings"

	"github.com/m3rciful/gamebot/core/telegram/format"
	"github.com/m3rciful/gamebot/internal/models"
)

// Chat-scope and registration messages.
const (
	GroupOnly       = "❌ Эта команда доступна только в групповых чатах."
	PrivateOnly     = "❌ Эта команда работает только в личных сообщениях."
	GroupNotFound   = "❌ Группа не найдена в базе данных. Сначала используйте /register для регистрации группы."
	GroupMissing    = "Группа не найдена"
	AdminCommand    = "❌ Эта команда доступна только администраторам группы."
	AlreadyMember   = "ℹ️ Вы уже зарегистрированы в этой группе."
	InviteNotFound  = "❌ Группа с таким кодом не найдена. Проверьте код приглашения."
	GenericFailure  = "❌ Произошла ошибка. Попробуйте позже."
	NothingToCancel = "Нет активных действий для отмены."
	Cancelled       = "❌ Действие отменено."
	NoGroups        = "У вас пока нет групп.\n\nСоздайте новую: /creategroup"
	CreateGroupHint = "Введите название группы после команды:\n\n" +
		"/creategroup Футбол по пятницам\n\n" +
		"Добавьте слово «приватная» в конце, чтобы вступать можно было только по коду приглашения."
)

// StartGroup greets a group chat.
const StartGroup = "👋 Привет! Используйте /newgame для создания игры или /games для просмотра списка игр."

// StartPrivate greets a user in private chat.
func StartPrivate(firstName string) string {
	if firstName == "" {
		firstName = "друг"
	}
	return fmt.Sprintf("Привет, %s! 🎮⚽🏐\n\n", firstName) +
		"Я помогу организовать игры!\n\n" +
		"Добавьте меня в вашу Telegram группу, чтобы начать создавать игры.\n\n" +
		"Команды в группе:\n" +
		"/newgame - Создать новую игру\n" +
		"/newtraining - Создать тренировку\n" +
		"/games - Список игр\n\n" +
		"Команды в личке:\n" +
		"/mygroups - Мои группы\n" +
		"/register КОД - Вступить в приватную группу\n" +
		"/help - Помощь"
}

// CommandLine is one line of the help message.
type CommandLine struct {
	Name        string
	Description string
}

// Help lists the visible commands.
func Help(lines []CommandLine) string {
	var b strings.Builder
	b.WriteString("📖 Доступные команды:\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "/%s - %s\n", l.Name, l.Description)
	}
	b.WriteString("\n🚀 Быстрое создание игры: после выбора вида спорта отправьте одной строкой\n")
	b.WriteString("дата время / мин-макс / стоимость / заметки / локация")
	return b.String()
}

// Welcome is sent when the bot joins a group.
func Welcome(title string) string {
	return "👋 Привет! Я бот для организации игр.\n\n" +
		fmt.Sprintf("Группа \"%s\" зарегистрирована!\n\n", title) +
		"Доступные команды:\n" +
		"/newgame - Создать новую игру\n" +
		"/games - Список предстоящих игр\n" +
		"/help - Помощь"
}

// Registered confirms /register.
func Registered(groupName string) string {
	return fmt.Sprintf("✅ Вы зарегистрированы в группе \"%s\"!\n\nТеперь вы можете записываться на игры.", groupName)
}

// GroupCreated confirms /creategroup.
func GroupCreated(g *models.Group) string {
	text := fmt.Sprintf("✅ Группа \"%s\" создана! Вы её администратор.", g.Name)
	if g.IsPrivate && g.InviteCode != nil {
		text += fmt.Sprintf("\n\n🔑 Код приглашения: %s\nУчастники вступают командой /register %s", *g.InviteCode, *g.InviteCode)
	}
	return text
}

// GroupsHeader titles the /mygroups list.
func GroupsHeader(n int) string {
	return fmt.Sprintf("👥 Ваши группы (%d):\n\nВыберите группу:", n)
}

// GroupMenuText describes a group in its menu.
func GroupMenuText(g *models.Group, members, upcoming int, isAdmin bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📁 %s\n", g.Name)
	if g.Description != "" {
		b.WriteString(g.Description + "\n")
	}
	fmt.Fprintf(&b, "👥 Участников: %d", members)
	if upcoming > 0 {
		fmt.Fprintf(&b, "\n\n🎮 Предстоящие игры: %d", upcoming)
	} else {
		b.WriteString("\n\n📭 Пока нет запланированных игр")
	}
	if isAdmin && g.IsPrivate {
		fmt.Fprintf(&b, "\n\n🔑 Код приглашения: %s", format.Or(g.InviteCode, "нет"))
	}
	return b.String()
}

// MembersText lists admins and regular members.
func MembersText(title string, members []models.GroupMember) string {
	var admins, regular []string
	for _, m := range members {
		if m.User == nil {
			continue
		}
		if m.IsAdmin() {
			admins = append(admins, m.User.Mention())
		} else {
			regular = append(regular, m.User.Mention())
		}
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	if len(admins) > 0 {
		b.WriteString("👑 Администраторы:\n")
		for _, a := range admins {
			fmt.Fprintf(&b, "• %s\n", a)
		}
		b.WriteString("\n")
	}
	if len(regular) > 0 {
		b.WriteString("👤 Участники:\n")
		for _, r := range regular {
			fmt.Fprintf(&b, "• %s\n", r)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ManageText titles the admin menu.
func ManageText(groupName string) string {
	return fmt.Sprintf("⚙️ Управление группой \"%s\"\n\nВыберите действие:", groupName)
}

// LeftGroup confirms leaving a group.
func LeftGroup(groupName string) string {
	return fmt.Sprintf("Вы покинули группу \"%s\" 👋\n\nИспользуйте /mygroups чтобы увидеть оставшиеся группы", groupName)
}

// InviteRegenerated shows a fresh invite code.
func InviteRegenerated(code string) string {
	return fmt.Sprintf("🔑 Новый код приглашения: %s\n\nСтарый код больше не действует.", code)
}

// Replies for updates no handler claims.
const (
	UnknownText     = "🤔 Не понимаю. Список команд: /help"
	UnknownDocument = "📎 Файлы не поддерживаются"
	UnknownAction   = "❌ Неизвестное действие"
)
