package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/go-co-op/gocron"
)

const jobTimeout = time.Minute

// MeetupMaintainer is the part of the meetup service the jobs drive.
type MeetupMaintainer interface {
	CompletePast(ctx context.Context) (int64, error)
	AuditCounters(ctx context.Context) ([]repositories.CounterDrift, error)
}

// StartCronJobs schedules meetup housekeeping and returns the running
// scheduler; call Stop on it during shutdown.
func StartCronJobs(meetups MeetupMaintainer) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)

	if _, err := s.Every(15).Minutes().Do(completePastMeetups, meetups); err != nil {
		return nil, err
	}
	if _, err := s.Every(1).Day().At("03:30").Do(auditParticipantCounters, meetups); err != nil {
		return nil, err
	}
	s.StartAsync()
	return s, nil
}

func completePastMeetups(meetups MeetupMaintainer) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	completed, err := meetups.CompletePast(ctx)
	if err != nil {
		slog.Error("Failed to complete past meetups", "error", err)
		return
	}
	if completed > 0 {
		slog.Info("Completed past meetups", "count", completed)
	}
}

func auditParticipantCounters(meetups MeetupMaintainer) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	drifts, err := meetups.AuditCounters(ctx)
	if err != nil {
		slog.Error("Failed to audit participant counters", "error", err)
		return
	}
	for _, d := range drifts {
		slog.Error("participant counter drift", "meetup_id", d.MeetupID, "cached", d.Cached, "actual", d.Actual)
	}
}
