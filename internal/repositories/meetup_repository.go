package repositories

import (
	"context"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MeetupFilter narrows ListOpen.
type MeetupFilter struct {
	Type  models.MeetupType
	After time.Time
	Limit int
}

// CounterDrift describes a meetup whose cached participant count disagrees
// with its joined participation rows.
type CounterDrift struct {
	MeetupID uint  `json:"meetupId"`
	Cached   uint  `json:"cached"`
	Actual   int64 `json:"actual"`
}

type MeetupRepository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	// Returning an error from fn rolls back every write made through it.
	WithTx(ctx context.Context, fn func(repo MeetupRepository) error) error

	Create(ctx context.Context, meetup *models.Meetup) error
	FindByID(ctx context.Context, id uint) (*models.Meetup, error)
	// FindByIDForUpdate locks the meetup row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Meetup, error)
	Save(ctx context.Context, meetup *models.Meetup) error
	ListOpen(ctx context.Context, filter MeetupFilter) ([]models.Meetup, error)
	ListByParticipant(ctx context.Context, userID uint) ([]models.Meetup, error)
	UpdateParticipantCount(ctx context.Context, meetupID uint, count uint, status models.MeetupStatus) error
	CompletePast(ctx context.Context, before time.Time) (int64, error)
	FindCounterDrift(ctx context.Context) ([]CounterDrift, error)

	FindActiveParticipation(ctx context.Context, meetupID, userID uint) (*models.Participation, error)
	InsertParticipation(ctx context.Context, p *models.Participation) error
	SaveParticipation(ctx context.Context, p *models.Participation) error
	CountActiveParticipants(ctx context.Context, meetupID uint) (int64, error)
	ListParticipants(ctx context.Context, meetupID uint) ([]models.ParticipantWithUser, error)
}

type GormMeetupRepository struct{ db *gorm.DB }

func NewMeetupRepository(db *gorm.DB) *GormMeetupRepository { return &GormMeetupRepository{db: db} }

func (r *GormMeetupRepository) WithTx(ctx context.Context, fn func(repo MeetupRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormMeetupRepository{db: tx})
	})
}

func (r *GormMeetupRepository) Create(ctx context.Context, meetup *models.Meetup) error {
	return r.db.WithContext(ctx).Create(meetup).Error
}

func (r *GormMeetupRepository) FindByID(ctx context.Context, id uint) (*models.Meetup, error) {
	var m models.Meetup
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMeetupRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Meetup, error) {
	var m models.Meetup
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMeetupRepository) Save(ctx context.Context, meetup *models.Meetup) error {
	return r.db.WithContext(ctx).Save(meetup).Error
}

func (r *GormMeetupRepository) ListOpen(ctx context.Context, filter MeetupFilter) ([]models.Meetup, error) {
	var meetups []models.Meetup
	query := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at > ?", models.MeetupOpen, filter.After)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Order("scheduled_at ASC, id ASC").Find(&meetups).Error
	return meetups, err
}

func (r *GormMeetupRepository) ListByParticipant(ctx context.Context, userID uint) ([]models.Meetup, error) {
	var meetups []models.Meetup
	sub := r.db.Table("participations").
		Select("meetup_id").
		Where("user_id = ? AND status = ?", userID, models.ParticipationJoined)
	err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("scheduled_at ASC, id ASC").
		Find(&meetups).Error
	return meetups, err
}

func (r *GormMeetupRepository) UpdateParticipantCount(ctx context.Context, meetupID uint, count uint, status models.MeetupStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Meetup{}).
		Where("id = ?", meetupID).
		Updates(map[string]any{"current_participants": count, "status": status}).Error
}

func (r *GormMeetupRepository) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Meetup{}).
		Where("status IN ? AND scheduled_at < ?", []models.MeetupStatus{models.MeetupOpen, models.MeetupFull}, before).
		Update("status", models.MeetupCompleted)
	return result.RowsAffected, result.Error
}

func (r *GormMeetupRepository) FindCounterDrift(ctx context.Context) ([]CounterDrift, error) {
	var drift []CounterDrift
	err := r.db.WithContext(ctx).
		Table("meetups").
		Select("meetups.id AS meetup_id, meetups.current_participants AS cached, COUNT(participations.id) AS actual").
		Joins("LEFT JOIN participations ON participations.meetup_id = meetups.id AND participations.status = ?", models.ParticipationJoined).
		Group("meetups.id, meetups.current_participants").
		Having("COUNT(participations.id) <> meetups.current_participants").
		Scan(&drift).Error
	return drift, err
}

func (r *GormMeetupRepository) FindActiveParticipation(ctx context.Context, meetupID, userID uint) (*models.Participation, error) {
	var p models.Participation
	err := r.db.WithContext(ctx).
		Where("meetup_id = ? AND user_id = ? AND status = ?", meetupID, userID, models.ParticipationJoined).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormMeetupRepository) InsertParticipation(ctx context.Context, p *models.Participation) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormMeetupRepository) SaveParticipation(ctx context.Context, p *models.Participation) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormMeetupRepository) CountActiveParticipants(ctx context.Context, meetupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Participation{}).
		Where("meetup_id = ? AND status = ?", meetupID, models.ParticipationJoined).
		Count(&count).Error
	return count, err
}

func (r *GormMeetupRepository) ListParticipants(ctx context.Context, meetupID uint) ([]models.ParticipantWithUser, error) {
	var participants []models.ParticipantWithUser
	err := r.db.WithContext(ctx).
		Table("participations").
		Select("participations.user_id, participations.joined_at, users.username, users.first_name, users.last_name, users.profile_image, users.is_verified, users.is_trusted").
		Joins("JOIN users ON users.id = participations.user_id").
		Where("participations.meetup_id = ? AND participations.status = ?", meetupID, models.ParticipationJoined).
		Order("participations.joined_at ASC, participations.id ASC").
		Scan(&participants).Error
	return participants, err
}
