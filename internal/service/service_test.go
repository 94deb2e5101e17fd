package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/database"
	"github.com/sushilghimire07/Social-Media-App/pkg/storage"
)

type recordedEvent struct {
	Type    string
	Key     string
	Payload interface{}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Produce(ctx context.Context, eventType, key string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (r *eventRecorder) Close() error { return nil }

func (r *eventRecorder) byType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, ev := range r.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type liveRecorder struct {
	mu        sync.Mutex
	published map[string][]string // userID -> event names
}

func newLiveRecorder() *liveRecorder {
	return &liveRecorder{published: make(map[string][]string)}
}

func (r *liveRecorder) Publish(userID, event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published[userID] = append(r.published[userID], event)
	return nil
}

type fixture struct {
	db          *gorm.DB
	users       repository.UserRepository
	follows     repository.FollowRepository
	connections repository.ConnectionRepository
	posts       repository.PostRepository
	stories     repository.StoryRepository
	messages    repository.MessageRepository
	processor   *media.ImageProcessor
	producer    *eventRecorder
	live        *liveRecorder
}

func setup(t *testing.T) *fixture {
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

	return &fixture{
		db:          db,
		users:       repository.NewGormUserRepository(db),
		follows:     repository.NewGormFollowRepository(db),
		connections: repository.NewGormConnectionRepository(db),
		posts:       repository.NewGormPostRepository(db),
		stories:     repository.NewGormStoryRepository(db),
		messages:    repository.NewGormMessageRepository(db),
		processor:   media.NewImageProcessor(store, 1280, 85),
		producer:    &eventRecorder{},
		live:        newLiveRecorder(),
	}
}

func (f *fixture) userService() UserService {
	return NewUserService(f.users, f.follows, f.connections, f.posts, f.processor, nil, 0)
}

func (f *fixture) connectionService() ConnectionService {
	return NewConnectionService(f.connections, f.users, f.producer)
}

func (f *fixture) postService() PostService {
	return NewPostService(f.posts, f.users, f.follows, f.connections, f.processor)
}

func (f *fixture) storyService() StoryService {
	return NewStoryService(f.stories, f.users, f.follows, f.connections, f.processor, f.producer)
}

func (f *fixture) messageService() MessageService {
	return NewMessageService(f.messages, f.users, f.processor, f.live)
}

func (f *fixture) seedUser(t *testing.T, id, username string) *domain.User {
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

func TestUserService_FollowValidation(t *testing.T) {
	f := setup(t)
	svc := f.userService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")

	assert.ErrorIs(t, svc.Follow(ctx, "u1", "u1"), ErrSelfFollow)
	assert.ErrorIs(t, svc.Follow(ctx, "u1", "ghost"), ErrUserNotFound)

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	assert.ErrorIs(t, svc.Follow(ctx, "u1", "u2"), ErrAlreadyFollowing)

	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))
	assert.ErrorIs(t, svc.Unfollow(ctx, "u1", "u2"), ErrNotFollowing)
}

func TestUserService_UpdateProfileKeepsUsernameOnCollision(t *testing.T) {
	f := setup(t)
	svc := f.userService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")

	updated, err := svc.UpdateProfile(ctx, "u2", &domain.UpdateProfileRequest{Username: "alice", Bio: "new bio"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", updated.Username)
	assert.Equal(t, "new bio", updated.Bio)

	updated, err = svc.UpdateProfile(ctx, "u2", &domain.UpdateProfileRequest{Username: "bobby"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bobby", updated.Username)
}

// staleUsernameCheckRepo reports every username as free, so the unique index
// is what surfaces the collision on write. Stands in for a concurrent
// registration landing between the availability check and the update.
type staleUsernameCheckRepo struct {
	repository.UserRepository
}

func (r *staleUsernameCheckRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}

func TestUserService_UpdateProfileKeepsUsernameWhenWriteHitsDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")

	svc := NewUserService(&staleUsernameCheckRepo{f.users}, f.follows, f.connections, f.posts, f.processor, nil, 0)

	updated, err := svc.UpdateProfile(ctx, "u2", &domain.UpdateProfileRequest{Username: "alice", Bio: "new bio"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", updated.Username)
	assert.Equal(t, "new bio", updated.Bio)

	got, err := f.users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, "new bio", got.Bio)
}

func TestUserService_ConnectionsAggregation(t *testing.T) {
	f := setup(t)
	svc := f.userService()
	ctx := context.Background()

	f.seedUser(t, "me", "me")
	f.seedUser(t, "friend", "friend")
	f.seedUser(t, "fan", "fan")
	f.seedUser(t, "idol", "idol")
	f.seedUser(t, "stranger", "stranger")

	conn, err := f.connections.Create(ctx, "me", "friend")
	require.NoError(t, err)
	require.NoError(t, f.connections.Accept(ctx, conn.ID))
	_, err = f.connections.Create(ctx, "stranger", "me")
	require.NoError(t, err)
	require.NoError(t, f.follows.Follow(ctx, "fan", "me"))
	require.NoError(t, f.follows.Follow(ctx, "me", "idol"))

	resp, err := svc.Connections(ctx, "me")
	require.NoError(t, err)

	require.Len(t, resp.Connections, 1)
	assert.Equal(t, "friend", resp.Connections[0].ID)
	require.Len(t, resp.Followers, 1)
	assert.Equal(t, "fan", resp.Followers[0].ID)
	require.Len(t, resp.Following, 1)
	assert.Equal(t, "idol", resp.Following[0].ID)
	require.Len(t, resp.Pending, 1)
	assert.Equal(t, "stranger", resp.Pending[0].ID)
}

func TestConnectionService_RequestStates(t *testing.T) {
	f := setup(t)
	svc := f.connectionService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")

	_, err := svc.Request(ctx, "u1", "u1")
	assert.ErrorIs(t, err, ErrSelfConnection)

	_, err = svc.Request(ctx, "u1", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	conn, err := svc.Request(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Len(t, f.producer.byType("connection.requested"), 1)

	// Duplicate check runs in both directions.
	_, err = svc.Request(ctx, "u2", "u1")
	assert.ErrorIs(t, err, ErrRequestPending)

	require.NoError(t, svc.Accept(ctx, "u2", "u1"))

	_, err = svc.Request(ctx, "u2", "u1")
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestConnectionService_RateLimit(t *testing.T) {
	f := setup(t)
	svc := f.connectionService()
	ctx := context.Background()

	f.seedUser(t, "sender", "sender")
	for i := 0; i < domain.ConnectionRequestLimit+1; i++ {
		f.seedUser(t, fmt.Sprintf("peer%d", i), fmt.Sprintf("peer%d", i))
	}

	for i := 0; i < domain.ConnectionRequestLimit; i++ {
		_, err := svc.Request(ctx, "sender", fmt.Sprintf("peer%d", i))
		require.NoError(t, err)
	}

	_, err := svc.Request(ctx, "sender", fmt.Sprintf("peer%d", domain.ConnectionRequestLimit))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestConnectionService_AcceptWithoutPending(t *testing.T) {
	f := setup(t)
	svc := f.connectionService()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")

	assert.ErrorIs(t, svc.Accept(context.Background(), "u1", "u2"), ErrNoPendingRequest)
}

func TestPostService_CreateValidation(t *testing.T) {
	f := setup(t)
	svc := f.postService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")

	_, err := svc.Create(ctx, "u1", &domain.CreatePostRequest{}, nil)
	assert.ErrorIs(t, err, ErrEmptyPost)

	post, err := svc.Create(ctx, "u1", &domain.CreatePostRequest{Content: "hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PostTypeText, post.PostType)
	assert.NotEmpty(t, post.ID)
}

func TestPostService_FeedAuthorSet(t *testing.T) {
	f := setup(t)
	svc := f.postService()
	ctx := context.Background()

	f.seedUser(t, "me", "me")
	f.seedUser(t, "followed", "followed")
	f.seedUser(t, "connected", "connected")
	f.seedUser(t, "stranger", "stranger")

	require.NoError(t, f.follows.Follow(ctx, "me", "followed"))
	conn, err := f.connections.Create(ctx, "connected", "me")
	require.NoError(t, err)
	require.NoError(t, f.connections.Accept(ctx, conn.ID))

	for _, author := range []string{"me", "followed", "connected", "stranger"} {
		_, err := svc.Create(ctx, author, &domain.CreatePostRequest{Content: "post by " + author}, nil)
		require.NoError(t, err)
	}

	feed, err := svc.Feed(ctx, "me")
	require.NoError(t, err)
	require.Len(t, feed, 3)

	authors := make(map[string]bool)
	for _, p := range feed {
		authors[p.UserID] = true
		require.NotNil(t, p.User)
	}
	assert.True(t, authors["me"])
	assert.True(t, authors["followed"])
	assert.True(t, authors["connected"])
	assert.False(t, authors["stranger"])
}

func TestPostService_LikeToggle(t *testing.T) {
	f := setup(t)
	svc := f.postService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	post, err := svc.Create(ctx, "u1", &domain.CreatePostRequest{Content: "hello"}, nil)
	require.NoError(t, err)

	liked, err := svc.Like(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.Like(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = svc.Like(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestStoryService_CreateAndListFiltersExpired(t *testing.T) {
	f := setup(t)
	svc := f.storyService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")

	_, err := svc.Create(ctx, "u1", &domain.CreateStoryRequest{MediaType: domain.MediaTypeImage}, nil)
	assert.ErrorIs(t, err, ErrMissingMedia)

	story, err := svc.Create(ctx, "u1", &domain.CreateStoryRequest{Content: "hi", MediaType: domain.MediaTypeText, BackgroundColor: "#fff"}, nil)
	require.NoError(t, err)
	assert.Len(t, f.producer.byType("story.created"), 1)

	old, err := svc.Create(ctx, "u1", &domain.CreateStoryRequest{Content: "old", MediaType: domain.MediaTypeText}, nil)
	require.NoError(t, err)
	require.NoError(t, f.db.Exec(`UPDATE stories SET created_at = ? WHERE id = ?`, time.Now().Add(-25*time.Hour), old.ID).Error)

	stories, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, story.ID, stories[0].ID)
	require.NotNil(t, stories[0].User)
	assert.Equal(t, "alice", stories[0].User.Username)
}

func TestStoryService_DeleteIsIdempotent(t *testing.T) {
	f := setup(t)
	svc := f.storyService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	story, err := svc.Create(ctx, "u1", &domain.CreateStoryRequest{Content: "hi", MediaType: domain.MediaTypeText}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, story.ID))
	require.NoError(t, svc.Delete(ctx, story.ID))

	stories, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestMessageService_SendPublishesToBothParties(t *testing.T) {
	f := setup(t)
	svc := f.messageService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")

	_, err := svc.Send(ctx, "u1", &domain.SendMessageRequest{ToUserID: "u1", Text: "hi"}, nil)
	assert.ErrorIs(t, err, ErrSelfMessage)

	_, err = svc.Send(ctx, "u1", &domain.SendMessageRequest{ToUserID: "ghost", Text: "hi"}, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	msg, err := svc.Send(ctx, "u1", &domain.SendMessageRequest{ToUserID: "u2", Text: "hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeText, msg.MessageType)

	assert.Equal(t, []string{EventMessage}, f.live.published["u1"])
	assert.Equal(t, []string{EventMessage}, f.live.published["u2"])
}

func TestMessageService_ChatMarksSeenAndRecentAggregates(t *testing.T) {
	f := setup(t)
	svc := f.messageService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	f.seedUser(t, "u2", "bob")
	f.seedUser(t, "u3", "carol")

	_, err := svc.Send(ctx, "u2", &domain.SendMessageRequest{ToUserID: "u1", Text: "first"}, nil)
	require.NoError(t, err)
	_, err = svc.Send(ctx, "u2", &domain.SendMessageRequest{ToUserID: "u1", Text: "second"}, nil)
	require.NoError(t, err)
	_, err = svc.Send(ctx, "u3", &domain.SendMessageRequest{ToUserID: "u1", Text: "other thread"}, nil)
	require.NoError(t, err)

	recent, err := svc.Recent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recent, 2)

	byPartner := make(map[string]int)
	for _, chat := range recent {
		byPartner[chat.Partner.ID] = chat.UnseenCount
	}
	assert.Equal(t, 2, byPartner["u2"])
	assert.Equal(t, 1, byPartner["u3"])

	msgs, err := svc.Chat(ctx, "u1", "u2")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)

	recent, err = svc.Recent(ctx, "u1")
	require.NoError(t, err)
	for _, chat := range recent {
		if chat.Partner.ID == "u2" {
			assert.Equal(t, 0, chat.UnseenCount)
		}
	}
}

func TestIdentityService_SyncUserCollisionSuffix(t *testing.T) {
	f := setup(t)
	svc := NewIdentityService(f.users, f.posts, nil)
	ctx := context.Background()

	f.seedUser(t, "existing", "alice")

	require.NoError(t, svc.SyncUser(ctx, &domain.IdentityEvent{
		ID:        "new",
		Email:     "alice@other.com",
		FirstName: "Alice",
		LastName:  "Other",
	}))

	created, err := f.users.GetByID(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "alice1", created.Username)
	assert.Equal(t, "Alice Other", created.FullName)
	assert.Equal(t, domain.DefaultBio, created.Bio)
}

func TestIdentityService_SyncUserUpdatesExisting(t *testing.T) {
	f := setup(t)
	svc := NewIdentityService(f.users, f.posts, nil)
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")

	require.NoError(t, svc.SyncUser(ctx, &domain.IdentityEvent{
		ID:        "u1",
		Email:     "renamed@example.com",
		FirstName: "Alice",
		LastName:  "Renamed",
	}))

	got, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", got.Email)
	assert.Equal(t, "Alice Renamed", got.FullName)
	// Username is user-owned after creation.
	assert.Equal(t, "alice", got.Username)
}

func TestIdentityService_DeleteUserRemovesPosts(t *testing.T) {
	f := setup(t)
	svc := NewIdentityService(f.users, f.posts, nil)
	posts := f.postService()
	ctx := context.Background()

	f.seedUser(t, "u1", "alice")
	_, err := posts.Create(ctx, "u1", &domain.CreatePostRequest{Content: "bye"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, "u1"))

	_, err = f.users.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	feed, err := f.posts.ByAuthor(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, feed)

	// Deleting an unknown user is a no-op.
	require.NoError(t, svc.DeleteUser(ctx, "ghost"))
}
