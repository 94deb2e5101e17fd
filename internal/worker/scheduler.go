package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/mailer"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// Scheduler runs the recurring worker jobs: the daily unseen-message digest
// and the expired-story sweep that backstops the per-story timers.
type Scheduler struct {
	cron           *cron.Cron
	users          repository.UserRepository
	messages       repository.MessageRepository
	stories        repository.StoryRepository
	storyService   service.StoryService
	mail           mailer.Mailer
	digestSchedule string
	sweepInterval  time.Duration
}

// NewScheduler creates the cron scheduler.
func NewScheduler(
	users repository.UserRepository,
	messages repository.MessageRepository,
	stories repository.StoryRepository,
	storyService service.StoryService,
	mail mailer.Mailer,
	digestSchedule string,
	sweepInterval time.Duration,
) *Scheduler {
	if digestSchedule == "" {
		digestSchedule = "0 9 * * *"
	}
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}
	return &Scheduler{
		cron:           cron.New(),
		users:          users,
		messages:       messages,
		stories:        stories,
		storyService:   storyService,
		mail:           mail,
		digestSchedule: digestSchedule,
		sweepInterval:  sweepInterval,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.digestSchedule, s.runDigest); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}

	every := fmt.Sprintf("@every %s", s.sweepInterval)
	if _, err := s.cron.AddFunc(every, s.runStorySweep); err != nil {
		return fmt.Errorf("failed to schedule story sweep: %w", err)
	}

	s.cron.Start()

	l := log.L()
	l.Info().Str("digest_schedule", s.digestSchedule).Dur("sweep_interval", s.sweepInterval).Msg("scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runDigest emails every user with unseen messages their total unseen count.
func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	l := log.L()

	userIDs, err := s.messages.UsersWithUnseen(ctx)
	if err != nil {
		l.Error().Err(err).Msg("digest: failed to list users with unseen messages")
		return
	}

	sent := 0
	for _, userID := range userIDs {
		counts, err := s.messages.UnseenCounts(ctx, userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("digest: failed to count unseen messages")
			continue
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		if total == 0 {
			continue
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			continue
		}

		if err := s.mail.SendUnseenDigest(user, total); err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("digest: failed to send email")
			continue
		}
		sent++
	}

	l.Info().Int("sent", sent).Msg("digest run complete")
}

// runStorySweep deletes stories whose 24 hours have passed. Covers stories
// whose deletion timer was lost in a restart.
func (s *Scheduler) runStorySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	l := log.L()

	cutoff := time.Now().Add(-domain.StoryTTL)
	ids, err := s.stories.ExpiredIDs(ctx, cutoff)
	if err != nil {
		l.Error().Err(err).Msg("story sweep: failed to list expired stories")
		return
	}

	for _, id := range ids {
		if err := s.storyService.Delete(ctx, id); err != nil {
			l.Error().Err(err).Str(log.FieldStoryID, id).Msg("story sweep: failed to delete story")
		}
	}

	if len(ids) > 0 {
		l.Info().Int("deleted", len(ids)).Msg("story sweep complete")
	}
}
