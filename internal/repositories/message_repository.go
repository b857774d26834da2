package repositories

import (
	"context"
	"slices"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// ListByMeetup returns the newest limit messages of a meetup in insertion
	// (id) order, oldest first.
	ListByMeetup(ctx context.Context, meetupID uint, limit int) ([]models.ChatMessage, error)
}

type GormMessageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) *GormMessageRepository { return &GormMessageRepository{db: db} }

func (r *GormMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *GormMessageRepository) ListByMeetup(ctx context.Context, meetupID uint, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Select("chat_messages.id, chat_messages.meetup_id, chat_messages.user_id, chat_messages.message, chat_messages.created_at, users.username AS username").
		Joins("LEFT JOIN users ON users.id = chat_messages.user_id").
		Where("chat_messages.meetup_id = ?", meetupID).
		Order("chat_messages.id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	slices.Reverse(messages)
	return messages, nil
}
