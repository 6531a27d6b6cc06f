package models

import (
	"strings"
	"time"
)

// User is a Telegram account known to the bot.
type User struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username   string    `gorm:"size:255" json:"username,omitempty"`
	FirstName  string    `gorm:"size:255" json:"first_name,omitempty"`
	LastName   string    `gorm:"size:255" json:"last_name,omitempty"`
	Phone      string    `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	if u == nil {
		return "User"
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{u.FirstName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// Mention returns @username when set, otherwise the full name.
func (u *User) Mention() string {
	if u != nil && u.Username != "" {
		return "@" + u.Username
	}
	return u.FullName()
}

// UserStats summarises a user's participations.
type UserStats struct {
	TotalGames    int
	UpcomingGames int
}
