package worker

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/waveline/notification-service/internal/repositories"
	"github.com/waveline/notification-service/internal/service"
)

// Sweeper runs the scheduled maintenance jobs: the notification retention
// sweep (read and older than the cutoff) and the stale sender-profile sweep.
type Sweeper struct {
	svc              *service.NotificationService
	profiles         repositories.SenderProfileRepository
	retentionDays    int
	profileRetention time.Duration
	schedule         string
	cron             *cron.Cron
}

// NewSweeper creates a sweeper with both jobs on the same cron schedule.
func NewSweeper(svc *service.NotificationService, profiles repositories.SenderProfileRepository, retentionDays int, profileRetention time.Duration, schedule string) *Sweeper {
	return &Sweeper{
		svc:              svc,
		profiles:         profiles,
		retentionDays:    retentionDays,
		profileRetention: profileRetention,
		schedule:         schedule,
		cron:             cron.New(),
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepNotifications); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.schedule, s.sweepProfiles); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("worker: sweeps scheduled (%s), retention %d days", s.schedule, s.retentionDays)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweepNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.svc.CleanupOlderThan(ctx, s.retentionDays)
	if err != nil {
		log.Printf("worker: notification sweep failed: %v", err)
		return
	}
	log.Printf("worker: notification sweep removed %d read notifications", deleted)
}

func (s *Sweeper) sweepProfiles() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.profiles.SweepStale(ctx, s.profileRetention)
	if err != nil {
		log.Printf("worker: profile sweep failed: %v", err)
		return
	}
	log.Printf("worker: profile sweep removed %d stale profiles", deleted)
}
