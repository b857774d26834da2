package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/metrics"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// ParticipantService is the participant registry. It admits and releases
// users while keeping Meetup.CurrentParticipants equal to the number of
// joined participation rows. Membership changes on one meetup are serialized
// by an in-process lock and by locking the meetup row inside the transaction.
type ParticipantService struct {
	meetups    repositories.MeetupRepository
	users      repositories.UserRepository
	membership *cache.Cache
	locks      *meetupLocks
	metrics    *metrics.Metrics
	now        func() time.Time
	released   func(meetupID, userID uint)
}

func NewParticipantService(meetups repositories.MeetupRepository, users repositories.UserRepository, membership *cache.Cache, m *metrics.Metrics) *ParticipantService {
	return &ParticipantService{
		meetups:    meetups,
		users:      users,
		membership: membership,
		locks:      newMeetupLocks(),
		metrics:    m,
		now:        utcNow,
	}
}

// OnRelease registers fn to run after a user stops being a participant
// through Leave or Remove. Must be called before the service is used.
func (s *ParticipantService) OnRelease(fn func(meetupID, userID uint)) { s.released = fn }

// Join adds userID to the meetup. Errors: ErrNotFound, ErrMeetupClosed,
// ErrAlreadyJoined, ErrFull, ErrPersistence.
func (s *ParticipantService) Join(ctx context.Context, meetupID, userID uint) (*models.Meetup, error) {
	// Checked outside the transaction: SQLite runs on a single connection.
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, storageErr("find user", err)
	}

	unlock := s.locks.lock(meetupID)
	defer unlock()

	var joined *models.Meetup
	err := s.meetups.WithTx(ctx, func(tx repositories.MeetupRepository) error {
		meetup, err := tx.FindByIDForUpdate(ctx, meetupID)
		if err != nil {
			return storageErr("find meetup", err)
		}
		if meetup.Status.IsTerminal() {
			return ErrMeetupClosed
		}
		if err := admit(ctx, tx, meetup, userID, s.now()); err != nil {
			return err
		}
		joined = meetup
		return nil
	})
	s.metrics.Membership("join", outcome(err))
	if err != nil {
		return nil, err
	}

	slog.Info("participant joined", "meetup_id", meetupID, "user_id", userID, "count", joined.CurrentParticipants)
	return joined, nil
}

// Leave marks the user's active participation as left. Errors: ErrNotFound,
// ErrMeetupClosed, ErrNotParticipant, ErrPersistence.
func (s *ParticipantService) Leave(ctx context.Context, meetupID, userID uint) (*models.Meetup, error) {
	unlock := s.locks.lock(meetupID)

	var left *models.Meetup
	err := s.meetups.WithTx(ctx, func(tx repositories.MeetupRepository) error {
		meetup, err := tx.FindByIDForUpdate(ctx, meetupID)
		if err != nil {
			return storageErr("find meetup", err)
		}
		if err := release(ctx, tx, meetup, userID, models.ParticipationLeft, s.now()); err != nil {
			return err
		}
		left = meetup
		return nil
	})
	s.metrics.Membership("leave", outcome(err))
	if err != nil {
		unlock()
		return nil, err
	}

	s.membership.Delete(utils.MembershipKey(userID, meetupID))
	unlock()
	s.notifyReleased(meetupID, userID)
	slog.Info("participant left", "meetup_id", meetupID, "user_id", userID, "count", left.CurrentParticipants)
	return left, nil
}

// Remove lets the meetup creator take another participant out of the meetup.
func (s *ParticipantService) Remove(ctx context.Context, meetupID, actorID, userID uint) (*models.Meetup, error) {
	if actorID == userID {
		return nil, Invalid("use leave to exit your own meetup")
	}

	unlock := s.locks.lock(meetupID)

	var updated *models.Meetup
	err := s.meetups.WithTx(ctx, func(tx repositories.MeetupRepository) error {
		meetup, err := tx.FindByIDForUpdate(ctx, meetupID)
		if err != nil {
			return storageErr("find meetup", err)
		}
		if meetup.CreatorID != actorID {
			return ErrForbidden
		}
		if err := release(ctx, tx, meetup, userID, models.ParticipationRemoved, s.now()); err != nil {
			return err
		}
		updated = meetup
		return nil
	})
	s.metrics.Membership("remove", outcome(err))
	if err != nil {
		unlock()
		return nil, err
	}

	s.membership.Delete(utils.MembershipKey(userID, meetupID))
	unlock()
	s.notifyReleased(meetupID, userID)
	slog.Info("participant removed", "meetup_id", meetupID, "user_id", userID, "by", actorID)
	return updated, nil
}

// ListParticipants returns the active participants with their profile fields.
func (s *ParticipantService) ListParticipants(ctx context.Context, meetupID uint) ([]models.ParticipantWithUser, error) {
	if _, err := s.meetups.FindByID(ctx, meetupID); err != nil {
		return nil, storageErr("find meetup", err)
	}
	participants, err := s.meetups.ListParticipants(ctx, meetupID)
	if err != nil {
		return nil, storageErr("list participants", err)
	}
	return participants, nil
}

// IsParticipant reports whether userID holds an active participation.
// Only positive answers are cached; Leave and Remove evict them.
func (s *ParticipantService) IsParticipant(ctx context.Context, meetupID, userID uint) (bool, error) {
	key := utils.MembershipKey(userID, meetupID)
	if _, found := s.membership.Get(key); found {
		return true, nil
	}

	// Holding the meetup lock keeps a concurrent Leave from evicting the key
	// between our read and our Set.
	unlock := s.locks.lock(meetupID)
	defer unlock()

	_, err := s.meetups.FindActiveParticipation(ctx, meetupID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, err := s.meetups.FindByID(ctx, meetupID); err != nil {
			return false, storageErr("find meetup", err)
		}
		return false, nil
	}
	if err != nil {
		return false, storageErr("find participation", err)
	}
	s.membership.Set(key, true, cache.DefaultExpiration)
	return true, nil
}

// notifyReleased runs after the membership cache entry is gone, so a
// concurrent IsParticipant can no longer answer true for the user.
func (s *ParticipantService) notifyReleased(meetupID, userID uint) {
	if s.released != nil {
		s.released(meetupID, userID)
	}
}

// admit inserts a joined row and bumps the counter. The caller must hold the
// meetup lock and pass a transaction-bound repository.
func admit(ctx context.Context, tx repositories.MeetupRepository, meetup *models.Meetup, userID uint, now time.Time) error {
	_, err := tx.FindActiveParticipation(ctx, meetup.ID, userID)
	if err == nil {
		return ErrAlreadyJoined
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storageErr("find participation", err)
	}
	if !meetup.HasCapacity() {
		return ErrFull
	}

	p := &models.Participation{
		MeetupID: meetup.ID,
		UserID:   userID,
		Status:   models.ParticipationJoined,
		JoinedAt: now,
	}
	if err := tx.InsertParticipation(ctx, p); err != nil {
		return storageErr("insert participation", err)
	}

	meetup.CurrentParticipants++
	meetup.SyncStatus()
	if err := tx.UpdateParticipantCount(ctx, meetup.ID, meetup.CurrentParticipants, meetup.Status); err != nil {
		return storageErr("update participant count", err)
	}
	return nil
}

// release flips the user's active row to status and decrements the counter.
func release(ctx context.Context, tx repositories.MeetupRepository, meetup *models.Meetup, userID uint, status models.ParticipationStatus, now time.Time) error {
	if meetup.Status.IsTerminal() {
		return ErrMeetupClosed
	}
	p, err := tx.FindActiveParticipation(ctx, meetup.ID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotParticipant
	}
	if err != nil {
		return storageErr("find participation", err)
	}
	if meetup.CurrentParticipants == 0 {
		return fmt.Errorf("meetup %d has an active row but a zero count: %w", meetup.ID, ErrInvariantViolation)
	}

	p.Status = status
	p.LeftAt = &now
	if err := tx.SaveParticipation(ctx, p); err != nil {
		return storageErr("save participation", err)
	}

	meetup.CurrentParticipants--
	meetup.SyncStatus()
	if err := tx.UpdateParticipantCount(ctx, meetup.ID, meetup.CurrentParticipants, meetup.Status); err != nil {
		return storageErr("update participant count", err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrFull):
		return "full"
	case errors.Is(err, ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMeetupClosed):
		return "closed"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
