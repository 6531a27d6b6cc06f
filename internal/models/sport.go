package models

import "time"

// Sport is static reference data seeded at startup.
type Sport struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Emoji     string    `gorm:"size:16;not null" json:"emoji"`
	CreatedAt time.Time `json:"-"`
}

// Label renders "emoji name".
func (s *Sport) Label() string {
	if s == nil {
		return "🎮 Игра"
	}
	return s.Emoji + " " + s.Name
}

// DefaultSports is the seed set, in display order.
var DefaultSports = []Sport{
	{Name: "Футбол", Emoji: "⚽"},
	{Name: "Волейбол", Emoji: "🏐"},
	{Name: "Баскетбол", Emoji: "🏀"},
	{Name: "Бадминтон", Emoji: "🏸"},
	{Name: "Теннис", Emoji: "🎾"},
	{Name: "Другое", Emoji: "🎮"},
}
