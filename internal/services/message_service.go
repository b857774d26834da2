package services

import (
	"context"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/metrics"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type MessageService struct {
	messages     repositories.MessageRepository
	users        repositories.UserRepository
	participants *ParticipantService
	metrics      *metrics.Metrics
	now          func() time.Time
	// inserts serializes stamping and inserting per meetup so ids and
	// createdAt agree on the order.
	inserts *meetupLocks
}

func NewMessageService(messages repositories.MessageRepository, users repositories.UserRepository, participants *ParticipantService, m *metrics.Metrics) *MessageService {
	return &MessageService{
		messages:     messages,
		users:        users,
		participants: participants,
		metrics:      m,
		now:          utcNow,
		inserts:      newMeetupLocks(),
	}
}

// Send persists a chat message from an active participant and returns the
// canonical record with its server-assigned id and timestamp.
func (s *MessageService) Send(ctx context.Context, meetupID, userID uint, text string) (models.ChatMessage, error) {
	body, err := utils.NormalizeChatMessage(text)
	if err != nil {
		return models.ChatMessage{}, Invalid("%s", err.Error())
	}

	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.ChatMessage{}, storageErr("find author", err)
	}
	member, err := s.participants.IsParticipant(ctx, meetupID, userID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !member {
		return models.ChatMessage{}, ErrNotParticipant
	}

	unlock := s.inserts.lock(meetupID)
	msg := models.ChatMessage{
		MeetupID:  meetupID,
		UserID:    userID,
		Message:   body,
		CreatedAt: s.now().UTC(),
	}
	err = s.messages.Create(ctx, &msg)
	unlock()
	if err != nil {
		return models.ChatMessage{}, storageErr("insert chat message", err)
	}
	msg.Username = author.Username
	s.metrics.MessagePersisted()
	return msg, nil
}

// History returns up to limit most recent messages, oldest first.
func (s *MessageService) History(ctx context.Context, meetupID uint, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	messages, err := s.messages.ListByMeetup(ctx, meetupID, limit)
	if err != nil {
		return nil, storageErr("list chat messages", err)
	}
	return messages, nil
}
