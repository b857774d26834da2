package models

import (
	"time"
)

type ParticipationStatus string

const (
	ParticipationJoined  ParticipationStatus = "joined"
	ParticipationLeft    ParticipationStatus = "left"
	ParticipationRemoved ParticipationStatus = "removed"
)

// Participation links a user to a meetup. Rows are never deleted; leaving
// flips the status so the history survives.
type Participation struct {
	ID       uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetupID uint                `gorm:"not null;index:idx_participation_meetup_user" json:"meetupId"`
	UserID   uint                `gorm:"not null;index:idx_participation_meetup_user;index" json:"userId"`
	Status   ParticipationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	JoinedAt time.Time           `gorm:"not null" json:"joinedAt"`
	LeftAt   *time.Time          `gorm:"default:null" json:"leftAt,omitempty"`
}

// ParticipantWithUser is an active participation joined with the user's profile.
type ParticipantWithUser struct {
	UserID       uint      `json:"userId"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	ProfileImage string    `json:"profileImage"`
	IsVerified   bool      `json:"isVerified"`
	IsTrusted    bool      `json:"isTrusted"`
	JoinedAt     time.Time `json:"joinedAt"`
}
