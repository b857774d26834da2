package models

import (
	"time"
)

type MeetupType string

const (
	MeetupOneOnOne   MeetupType = "one_on_one"
	MeetupSmallGroup MeetupType = "small_group"
	MeetupLargeGroup MeetupType = "large_group"
)

// MaxParticipants returns the capacity implied by a meetup type, or 0 for unknown types.
func (t MeetupType) MaxParticipants() uint {
	switch t {
	case MeetupOneOnOne:
		return 2
	case MeetupSmallGroup:
		return 4
	case MeetupLargeGroup:
		return 8
	default:
		return 0
	}
}

type MeetupStatus string

const (
	MeetupOpen      MeetupStatus = "open"
	MeetupFull      MeetupStatus = "full"
	MeetupCompleted MeetupStatus = "completed"
	MeetupCancelled MeetupStatus = "cancelled"
)

// IsTerminal reports whether no more membership changes are allowed.
func (s MeetupStatus) IsTerminal() bool {
	return s == MeetupCompleted || s == MeetupCancelled
}

type Meetup struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string       `gorm:"type:varchar(100);not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Type         MeetupType   `gorm:"type:varchar(20);not null" json:"type"`
	VenueName    string       `gorm:"type:varchar(255)" json:"venueName"`
	VenueAddress string       `gorm:"type:varchar(255)" json:"venueAddress"`
	VenueType    string       `gorm:"type:varchar(50)" json:"venueType"`
	ScheduledAt  time.Time    `gorm:"not null;index" json:"scheduledAt"`
	Status       MeetupStatus `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	CreatorID    uint         `gorm:"not null;index" json:"creatorId"`

	// CurrentParticipants is a cache of the joined participation rows and
	// only changes inside the same transaction as those rows.
	CurrentParticipants uint `gorm:"not null;default:0" json:"currentParticipants"`
	MaxParticipants     uint `gorm:"not null" json:"maxParticipants"`

	// Optional matching constraints.
	MinAge            *uint    `json:"minAge,omitempty"`
	MaxAge            *uint    `json:"maxAge,omitempty"`
	MaxDistanceKm     *float64 `json:"maxDistanceKm,omitempty"`
	RequiredInterests []string `gorm:"serializer:json;type:text" json:"requiredInterests,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// HasCapacity reports whether one more participant fits.
func (m Meetup) HasCapacity() bool {
	return m.CurrentParticipants < m.MaxParticipants
}

// SyncStatus moves a non-terminal meetup between open and full to match its counter.
func (m *Meetup) SyncStatus() {
	if m.Status.IsTerminal() {
		return
	}
	if m.CurrentParticipants >= m.MaxParticipants {
		m.Status = MeetupFull
	} else {
		m.Status = MeetupOpen
	}
}
