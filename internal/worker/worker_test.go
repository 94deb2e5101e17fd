package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/events"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/pkg/database"
	"github.com/sushilghimire07/Social-Media-App/pkg/storage"
)

type sentMail struct {
	Kind string
	To   string
}

type mailRecorder struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *mailRecorder) SendConnectionRequest(to, from *domain.User) error {
	return m.record("request", to.ID)
}

func (m *mailRecorder) SendConnectionReminder(to, from *domain.User) error {
	return m.record("reminder", to.ID)
}

func (m *mailRecorder) SendUnseenDigest(to *domain.User, unseenCount int) error {
	return m.record("digest", to.ID)
}

func (m *mailRecorder) record(kind, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: kind, To: to})
	return nil
}

func (m *mailRecorder) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type workerFixture struct {
	db          *gorm.DB
	users       repository.UserRepository
	connections repository.ConnectionRepository
	stories     repository.StoryRepository
	messages    repository.MessageRepository
	storySvc    service.StoryService
	mail        *mailRecorder
}

func setupWorker(t *testing.T) *workerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.FollowModel{},
		&domain.ConnectionModel{},
		&domain.PostModel{},
		&domain.PostLikeModel{},
		&domain.StoryModel{},
		&domain.MessageModel{},
	))

	store, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost/uploads",
	})
	require.NoError(t, err)

	users := repository.NewGormUserRepository(db)
	follows := repository.NewGormFollowRepository(db)
	connections := repository.NewGormConnectionRepository(db)
	stories := repository.NewGormStoryRepository(db)
	processor := media.NewImageProcessor(store, 1280, 85)

	return &workerFixture{
		db:          db,
		users:       users,
		connections: connections,
		stories:     stories,
		messages:    repository.NewGormMessageRepository(db),
		storySvc:    service.NewStoryService(stories, users, follows, connections, processor, nil),
		mail:        &mailRecorder{},
	}
}

func (f *workerFixture) jobs(t *testing.T, reminderDelay time.Duration) *Jobs {
	t.Helper()
	identity := service.NewIdentityService(f.users, repository.NewGormPostRepository(f.db), nil)
	j := NewJobs(identity, f.storySvc, f.users, f.connections, f.mail, reminderDelay)
	t.Cleanup(j.Close)
	return j
}

func (f *workerFixture) seedUser(t *testing.T, id, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:       id,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Username: username,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func event(t *testing.T, eventType string, payload interface{}) *InboundEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &InboundEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Payload:   raw,
	}
}

func TestJobs_IdentityLifecycle(t *testing.T) {
	f := setupWorker(t)
	j := f.jobs(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, j.HandleEvent(ctx, event(t, events.TypeUserCreated, domain.IdentityEvent{
		ID:        "u1",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
	})))

	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, j.HandleEvent(ctx, event(t, events.TypeUserDeleted, domain.IdentityEvent{ID: "u1"})))

	_, err = f.users.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestJobs_ConnectionRequestedSendsMailAndReminder(t *testing.T) {
	f := setupWorker(t)
	j := f.jobs(t, 30*time.Millisecond)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")
	conn, err := f.connections.Create(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, j.HandleEvent(ctx, event(t, events.TypeConnectionRequested, events.ConnectionRequestedPayload{
		ConnectionID: conn.ID,
		FromUserID:   "u1",
		ToUserID:     "u2",
	})))

	assert.Equal(t, 1, f.mail.count("request"))

	assert.Eventually(t, func() bool {
		return f.mail.count("reminder") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestJobs_NoReminderOnceAccepted(t *testing.T) {
	f := setupWorker(t)
	j := f.jobs(t, 30*time.Millisecond)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")
	conn, err := f.connections.Create(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, j.HandleEvent(ctx, event(t, events.TypeConnectionRequested, events.ConnectionRequestedPayload{
		ConnectionID: conn.ID,
		FromUserID:   "u1",
		ToUserID:     "u2",
	})))
	require.NoError(t, f.connections.Accept(ctx, conn.ID))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, f.mail.count("reminder"))
}

func TestJobs_StoryDeletionAtExpiry(t *testing.T) {
	f := setupWorker(t)
	j := f.jobs(t, time.Hour)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	story := &domain.Story{
		ID:        "s1",
		UserID:    "u1",
		Content:   "hello",
		MediaType: domain.MediaTypeText,
	}
	require.NoError(t, f.stories.Create(ctx, story))

	// CreatedAt older than the story TTL arms an immediate timer.
	require.NoError(t, j.HandleEvent(ctx, event(t, events.TypeStoryCreated, events.StoryCreatedPayload{
		StoryID:   "s1",
		UserID:    "u1",
		CreatedAt: time.Now().Add(-25 * time.Hour).Unix(),
	})))

	assert.Eventually(t, func() bool {
		_, err := f.stories.GetByID(ctx, "s1")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestJobs_UnknownEventIgnored(t *testing.T) {
	f := setupWorker(t)
	j := f.jobs(t, time.Hour)

	require.NoError(t, j.HandleEvent(context.Background(), &InboundEvent{Type: "somebody.elses.event"}))
}

func TestJobs_CloseStopsPendingTimers(t *testing.T) {
	f := setupWorker(t)
	j := f.jobs(t, 50*time.Millisecond)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")
	conn, err := f.connections.Create(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, j.HandleEvent(ctx, event(t, events.TypeConnectionRequested, events.ConnectionRequestedPayload{
		ConnectionID: conn.ID,
		FromUserID:   "u1",
		ToUserID:     "u2",
	})))
	j.Close()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, f.mail.count("reminder"))
}

func TestScheduler_DigestMailsUsersWithUnseen(t *testing.T) {
	f := setupWorker(t)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")
	require.NoError(t, f.messages.Create(ctx, &domain.Message{
		ID: "m1", FromUserID: "u2", ToUserID: "u1", Text: "hi", MessageType: domain.MediaTypeText,
	}))
	require.NoError(t, f.messages.Create(ctx, &domain.Message{
		ID: "m2", FromUserID: "u2", ToUserID: "u1", Text: "there", MessageType: domain.MediaTypeText,
	}))

	s := NewScheduler(f.users, f.messages, f.stories, f.storySvc, f.mail, "", 0)
	s.runDigest()

	require.Equal(t, 1, f.mail.count("digest"))
	assert.Equal(t, "u1", f.mail.sent[0].To)
}

func TestScheduler_StorySweepDeletesExpired(t *testing.T) {
	f := setupWorker(t)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	require.NoError(t, f.stories.Create(ctx, &domain.Story{
		ID: "fresh", UserID: "u1", Content: "new", MediaType: domain.MediaTypeText,
	}))
	require.NoError(t, f.stories.Create(ctx, &domain.Story{
		ID: "stale", UserID: "u1", Content: "old", MediaType: domain.MediaTypeText,
	}))
	require.NoError(t, f.db.Exec(`UPDATE stories SET created_at = ? WHERE id = ?`, time.Now().Add(-25*time.Hour), "stale").Error)

	s := NewScheduler(f.users, f.messages, f.stories, f.storySvc, f.mail, "", 0)
	s.runStorySweep()

	_, err := f.stories.GetByID(ctx, "fresh")
	assert.NoError(t, err)
	_, err = f.stories.GetByID(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrStoryNotFound)
}
