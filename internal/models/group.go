package models

import "time"

// Group maps to a Telegram chat (or a private group joined by invite code).
type Group struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"telegram_chat_id,omitempty"`
	CreatorID      *int64    `json:"creator_id,omitempty"`
	IsPrivate      bool      `gorm:"not null;default:false" json:"is_private"`
	InviteCode     *string   `gorm:"size:16;uniqueIndex" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Members []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// GroupMember joins a user to a group with a role. (user, group) uniqueness is
// checked by the group service.
type GroupMember struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	UserID   int64     `gorm:"not null;index" json:"user_id"`
	GroupID  int64     `gorm:"not null;index" json:"group_id"`
	Role     GroupRole `gorm:"size:16;not null;default:member" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
}

// IsAdmin reports whether the member administers the group.
func (m *GroupMember) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
