package models

import "time"

// Location is a venue owned by one group and usable for several sports.
type Location struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	GroupID   int64     `gorm:"not null;index" json:"group_id"`
	MapURL    string    `gorm:"size:500" json:"map_url,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SportLocations []SportLocation `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"-"`
}

// SportLocation associates a sport with a location.
type SportLocation struct {
	ID         int64     `gorm:"primaryKey"`
	SportID    int64     `gorm:"not null;uniqueIndex:idx_sport_location"`
	LocationID int64     `gorm:"not null;uniqueIndex:idx_sport_location"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Sport *Sport `gorm:"foreignKey:SportID;constraint:OnDelete:CASCADE"`
}

// Sports returns the loaded associated sports.
func (l *Location) Sports() []Sport {
	if l == nil {
		return nil
	}
	out := make([]Sport, 0, len(l.SportLocations))
	for _, sl := range l.SportLocations {
		if sl.Sport != nil {
			out = append(out, *sl.Sport)
		}
	}
	return out
}

// SportIDs returns the associated sport ids.
func (l *Location) SportIDs() []int64 {
	if l == nil {
		return nil
	}
	out := make([]int64, 0, len(l.SportLocations))
	for _, sl := range l.SportLocations {
		out = append(out, sl.SportID)
	}
	return out
}

// HasSport reports whether the location is associated with sportID.
func (l *Location) HasSport(sportID int64) bool {
	for _, id := range l.SportIDs() {
		if id == sportID {
			return true
		}
	}
	return false
}
