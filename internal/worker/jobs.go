package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/events"
	"github.com/sushilghimire07/Social-Media-App/internal/mailer"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// Jobs dispatches consumed events to their handlers. Delayed work (the
// connection reminder, the story deletion) runs on in-process timers; there
// is no durable queue, and the cron sweep backstops the story timers across
// restarts.
type Jobs struct {
	identity      service.IdentityService
	stories       service.StoryService
	users         repository.UserRepository
	connections   repository.ConnectionRepository
	mail          mailer.Mailer
	reminderDelay time.Duration

	mu     sync.Mutex
	timers []*time.Timer
	closed bool
}

// NewJobs creates the worker job dispatcher.
func NewJobs(
	identity service.IdentityService,
	stories service.StoryService,
	users repository.UserRepository,
	connections repository.ConnectionRepository,
	mail mailer.Mailer,
	reminderDelay time.Duration,
) *Jobs {
	if reminderDelay <= 0 {
		reminderDelay = 24 * time.Hour
	}
	return &Jobs{
		identity:      identity,
		stories:       stories,
		users:         users,
		connections:   connections,
		mail:          mail,
		reminderDelay: reminderDelay,
	}
}

// HandleEvent routes one consumed event.
func (j *Jobs) HandleEvent(ctx context.Context, event *InboundEvent) error {
	switch event.Type {
	case events.TypeUserCreated, events.TypeUserUpdated:
		var ev domain.IdentityEvent
		if err := json.Unmarshal(event.Payload, &ev); err != nil {
			return fmt.Errorf("bad identity payload: %w", err)
		}
		return j.identity.SyncUser(ctx, &ev)

	case events.TypeUserDeleted:
		var ev domain.IdentityEvent
		if err := json.Unmarshal(event.Payload, &ev); err != nil {
			return fmt.Errorf("bad identity payload: %w", err)
		}
		return j.identity.DeleteUser(ctx, ev.ID)

	case events.TypeConnectionRequested:
		var p events.ConnectionRequestedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("bad connection payload: %w", err)
		}
		return j.handleConnectionRequested(ctx, &p)

	case events.TypeStoryCreated:
		var p events.StoryCreatedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("bad story payload: %w", err)
		}
		j.scheduleStoryDeletion(&p)
		return nil

	default:
		l := log.Ctx(ctx)
		l.Warn().Str(log.FieldEvent, event.Type).Msg("unknown event type ignored")
		return nil
	}
}

// handleConnectionRequested emails the recipient right away and schedules a
// reminder that only fires if the request is still pending.
func (j *Jobs) handleConnectionRequested(ctx context.Context, p *events.ConnectionRequestedPayload) error {
	l := log.Ctx(ctx)

	from, err := j.users.GetByID(ctx, p.FromUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	to, err := j.users.GetByID(ctx, p.ToUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if err := j.mail.SendConnectionRequest(to, from); err != nil {
		l.Error().Err(err).Str(log.FieldTargetID, to.ID).Msg("failed to send connection request email")
	}

	connectionID := p.ConnectionID
	j.schedule(j.reminderDelay, func() {
		j.sendReminderIfPending(connectionID)
	})
	return nil
}

// sendReminderIfPending re-checks the edge before mailing: an accepted
// request gets no reminder.
func (j *Jobs) sendReminderIfPending(connectionID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	l := log.L()

	conn, err := j.connections.GetByID(ctx, connectionID)
	if err != nil {
		if !errors.Is(err, repository.ErrConnectionNotFound) {
			l.Error().Err(err).Uint("connection_id", connectionID).Msg("reminder lookup failed")
		}
		return
	}
	if conn.Accepted() {
		return
	}

	from, err := j.users.GetByID(ctx, conn.FromUserID)
	if err != nil {
		return
	}
	to, err := j.users.GetByID(ctx, conn.ToUserID)
	if err != nil {
		return
	}

	if err := j.mail.SendConnectionReminder(to, from); err != nil {
		l.Error().Err(err).Str(log.FieldTargetID, to.ID).Msg("failed to send connection reminder email")
	}
}

// scheduleStoryDeletion arms a timer for the story's expiry instant. Stories
// consumed after their expiry are deleted immediately.
func (j *Jobs) scheduleStoryDeletion(p *events.StoryCreatedPayload) {
	expiresAt := time.Unix(p.CreatedAt, 0).Add(domain.StoryTTL)
	delay := time.Until(expiresAt)
	if delay < 0 {
		delay = 0
	}

	storyID := p.StoryID
	j.schedule(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := j.stories.Delete(ctx, storyID); err != nil {
			l := log.L()
			l.Error().Err(err).Str(log.FieldStoryID, storyID).Msg("scheduled story deletion failed")
		}
	})
}

func (j *Jobs) schedule(delay time.Duration, fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	j.timers = append(j.timers, time.AfterFunc(delay, fn))
}

// Close stops every pending timer.
func (j *Jobs) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	for _, t := range j.timers {
		t.Stop()
	}
	j.timers = nil
}

var _ EventHandler = (*Jobs)(nil)
