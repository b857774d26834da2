package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/config"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	db           *gorm.DB
	meetupRepo   *repositories.GormMeetupRepository
	users        *UserService
	participants *ParticipantService
	meetups      *MeetupService
	messages     *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := config.OpenDB("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repositories.NewUserRepository(db)
	meetupRepo := repositories.NewMeetupRepository(db)
	msgRepo := repositories.NewMessageRepository(db)

	participants := NewParticipantService(meetupRepo, userRepo, utils.NewMembershipCache(), nil)
	return &testEnv{
		db:           db,
		meetupRepo:   meetupRepo,
		users:        NewUserService(userRepo),
		participants: participants,
		meetups:      NewMeetupService(meetupRepo, userRepo, participants, 3*time.Hour),
		messages:     NewMessageService(msgRepo, userRepo, participants, nil),
	}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	email := name + "@example.com"
	u, err := e.users.Create(context.Background(), ProfileInput{Username: &name, Email: &email})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (e *testEnv) meetup(t *testing.T, creator *models.User, meetupType models.MeetupType) *models.Meetup {
	t.Helper()
	m, err := e.meetups.Create(context.Background(), creator.ID, CreateMeetupInput{
		Title:       fmt.Sprintf("%s meetup", creator.Username),
		Type:        meetupType,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create meetup: %v", err)
	}
	return m
}

// assertCounter checks the cached count against the joined rows.
func (e *testEnv) assertCounter(t *testing.T, meetupID uint, want uint) {
	t.Helper()
	ctx := context.Background()
	m, err := e.meetupRepo.FindByID(ctx, meetupID)
	if err != nil {
		t.Fatalf("find meetup: %v", err)
	}
	rows, err := e.meetupRepo.CountActiveParticipants(ctx, meetupID)
	if err != nil {
		t.Fatalf("count participants: %v", err)
	}
	if m.CurrentParticipants != want {
		t.Errorf("currentParticipants = %d, want %d", m.CurrentParticipants, want)
	}
	if int64(m.CurrentParticipants) != rows {
		t.Errorf("currentParticipants = %d but %d joined rows", m.CurrentParticipants, rows)
	}
}
