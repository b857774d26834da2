package models

import (
	"time"
)

// User mirrors the profile created by the external registration flow.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"type:varchar(100)" json:"firstName"`
	LastName     string    `gorm:"type:varchar(100)" json:"lastName"`
	ProfileImage string    `gorm:"type:varchar(512)" json:"profileImage"`
	IsVerified   bool      `gorm:"default:false" json:"isVerified"`
	IsTrusted    bool      `gorm:"default:false" json:"isTrusted"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Interests    []string  `gorm:"serializer:json;type:text" json:"interests"`
	Location     string    `gorm:"type:varchar(255)" json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName is what chat headers show for a user.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
