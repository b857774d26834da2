package models

import (
	"time"
)

// ChatMessage is the canonical, persisted form of a message in a meetup room.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetupID  uint      `gorm:"not null;index:idx_chat_meetup_created" json:"meetupId"`
	UserID    uint      `gorm:"not null" json:"userId"`
	Username  string    `gorm:"->;-:migration" json:"username,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;index:idx_chat_meetup_created" json:"createdAt"`
}
