package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
)

type CreateMeetupInput struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Type              models.MeetupType `json:"type"`
	VenueName         string            `json:"venueName"`
	VenueAddress      string            `json:"venueAddress"`
	VenueType         string            `json:"venueType"`
	ScheduledAt       time.Time         `json:"scheduledAt"`
	MinAge            *uint             `json:"minAge"`
	MaxAge            *uint             `json:"maxAge"`
	MaxDistanceKm     *float64          `json:"maxDistanceKm"`
	RequiredInterests []string          `json:"requiredInterests"`
}

// LogisticsPatch carries the fields a creator may change after creation.
// Nil fields are left untouched.
type LogisticsPatch struct {
	Description  *string    `json:"description"`
	VenueName    *string    `json:"venueName"`
	VenueAddress *string    `json:"venueAddress"`
	VenueType    *string    `json:"venueType"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
}

type MeetupService struct {
	meetups      repositories.MeetupRepository
	users        repositories.UserRepository
	participants *ParticipantService
	grace        time.Duration
	now          func() time.Time
}

func NewMeetupService(meetups repositories.MeetupRepository, users repositories.UserRepository, participants *ParticipantService, grace time.Duration) *MeetupService {
	return &MeetupService{
		meetups:      meetups,
		users:        users,
		participants: participants,
		grace:        grace,
		now:          utcNow,
	}
}

// Create stores a new meetup with its creator already joined.
func (s *MeetupService) Create(ctx context.Context, creatorID uint, in CreateMeetupInput) (*models.Meetup, error) {
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return nil, Invalid("title is required")
	case len(in.Title) > 100:
		return nil, Invalid("title must be at most 100 characters")
	case in.Type.MaxParticipants() == 0:
		return nil, Invalid("unknown meetup type %q", in.Type)
	case in.ScheduledAt.IsZero():
		return nil, Invalid("scheduledAt is required")
	case in.ScheduledAt.Before(s.now()):
		return nil, Invalid("scheduledAt must be in the future")
	case in.MinAge != nil && in.MaxAge != nil && *in.MinAge > *in.MaxAge:
		return nil, Invalid("minAge must not exceed maxAge")
	case in.MaxDistanceKm != nil && *in.MaxDistanceKm <= 0:
		return nil, Invalid("maxDistanceKm must be positive")
	}

	if _, err := s.users.FindByID(ctx, creatorID); err != nil {
		return nil, storageErr("find creator", err)
	}

	meetup := &models.Meetup{
		Title:             in.Title,
		Description:       in.Description,
		Type:              in.Type,
		VenueName:         in.VenueName,
		VenueAddress:      in.VenueAddress,
		VenueType:         in.VenueType,
		ScheduledAt:       in.ScheduledAt.UTC(),
		Status:            models.MeetupOpen,
		CreatorID:         creatorID,
		MaxParticipants:   in.Type.MaxParticipants(),
		MinAge:            in.MinAge,
		MaxAge:            in.MaxAge,
		MaxDistanceKm:     in.MaxDistanceKm,
		RequiredInterests: in.RequiredInterests,
	}
	err := s.meetups.WithTx(ctx, func(tx repositories.MeetupRepository) error {
		if err := tx.Create(ctx, meetup); err != nil {
			return storageErr("create meetup", err)
		}
		return admit(ctx, tx, meetup, creatorID, s.now())
	})
	if err != nil {
		return nil, err
	}

	slog.Info("meetup created", "meetup_id", meetup.ID, "creator_id", creatorID, "type", meetup.Type)
	return meetup, nil
}

func (s *MeetupService) Get(ctx context.Context, id uint) (*models.Meetup, error) {
	meetup, err := s.meetups.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr("find meetup", err)
	}
	return meetup, nil
}

// ListOpen returns upcoming meetups that still accept participants.
func (s *MeetupService) ListOpen(ctx context.Context, meetupType models.MeetupType, limit int) ([]models.Meetup, error) {
	if meetupType != "" && meetupType.MaxParticipants() == 0 {
		return nil, Invalid("unknown meetup type %q", meetupType)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	meetups, err := s.meetups.ListOpen(ctx, repositories.MeetupFilter{Type: meetupType, After: s.now(), Limit: limit})
	if err != nil {
		return nil, storageErr("list meetups", err)
	}
	return meetups, nil
}

// ListForUser returns the meetups userID is currently joined to.
func (s *MeetupService) ListForUser(ctx context.Context, userID uint) ([]models.Meetup, error) {
	meetups, err := s.meetups.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, storageErr("list meetups", err)
	}
	return meetups, nil
}

// UpdateLogistics applies patch on behalf of the meetup creator.
func (s *MeetupService) UpdateLogistics(ctx context.Context, actorID, meetupID uint, patch LogisticsPatch) (*models.Meetup, error) {
	if patch.ScheduledAt != nil && patch.ScheduledAt.Before(s.now()) {
		return nil, Invalid("scheduledAt must be in the future")
	}
	return s.mutate(ctx, actorID, meetupID, func(m *models.Meetup) {
		if patch.Description != nil {
			m.Description = *patch.Description
		}
		if patch.VenueName != nil {
			m.VenueName = *patch.VenueName
		}
		if patch.VenueAddress != nil {
			m.VenueAddress = *patch.VenueAddress
		}
		if patch.VenueType != nil {
			m.VenueType = *patch.VenueType
		}
		if patch.ScheduledAt != nil {
			m.ScheduledAt = patch.ScheduledAt.UTC()
		}
	})
}

// Cancel moves the meetup to the terminal cancelled state.
func (s *MeetupService) Cancel(ctx context.Context, actorID, meetupID uint) (*models.Meetup, error) {
	meetup, err := s.mutate(ctx, actorID, meetupID, func(m *models.Meetup) {
		m.Status = models.MeetupCancelled
	})
	if err != nil {
		return nil, err
	}
	slog.Info("meetup cancelled", "meetup_id", meetupID, "by", actorID)
	return meetup, nil
}

// mutate runs fn on the locked meetup row after checking the actor is the
// creator and the meetup is not terminal.
func (s *MeetupService) mutate(ctx context.Context, actorID, meetupID uint, fn func(m *models.Meetup)) (*models.Meetup, error) {
	unlock := s.participants.locks.lock(meetupID)
	defer unlock()

	var updated *models.Meetup
	err := s.meetups.WithTx(ctx, func(tx repositories.MeetupRepository) error {
		meetup, err := tx.FindByIDForUpdate(ctx, meetupID)
		if err != nil {
			return storageErr("find meetup", err)
		}
		if meetup.CreatorID != actorID {
			return ErrForbidden
		}
		if meetup.Status.IsTerminal() {
			return ErrMeetupClosed
		}
		fn(meetup)
		if err := tx.Save(ctx, meetup); err != nil {
			return storageErr("save meetup", err)
		}
		updated = meetup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CompletePast marks meetups scheduled longer than the grace period ago as completed.
func (s *MeetupService) CompletePast(ctx context.Context) (int64, error) {
	n, err := s.meetups.CompletePast(ctx, s.now().Add(-s.grace))
	if err != nil {
		return 0, storageErr("complete past meetups", err)
	}
	return n, nil
}

// AuditCounters lists meetups whose cached count disagrees with their rows.
func (s *MeetupService) AuditCounters(ctx context.Context) ([]repositories.CounterDrift, error) {
	drift, err := s.meetups.FindCounterDrift(ctx)
	if err != nil {
		return nil, storageErr("audit counters", err)
	}
	return drift, nil
}
