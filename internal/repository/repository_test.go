package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/pkg/database"
)

func setupDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedUser(t *testing.T, repo UserRepository, id, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:       id,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Username: username,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice")

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := setupDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice")

	err := repo.Create(ctx, &domain.User{ID: "u2", Email: "other@example.com", Username: "alice"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestUserRepository_SearchExcludesRequester(t *testing.T) {
	db := setupDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice")
	seedUser(t, repo, "u2", "alicia")
	bob := seedUser(t, repo, "u3", "bob")
	bob.Location = "Alice Springs"
	require.NoError(t, repo.Update(ctx, bob))

	results, err := repo.Search(ctx, "ALIC", "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(results))
	for _, u := range results {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{"u2", "u3"}, ids)
}

func TestFollowRepository_DuplicateAndUnfollow(t *testing.T) {
	db := setupDB(t)
	users := NewGormUserRepository(db)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")

	require.NoError(t, repo.Follow(ctx, "u1", "u2"))
	assert.ErrorIs(t, repo.Follow(ctx, "u1", "u2"), ErrAlreadyFollowing)

	following, err := repo.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, repo.Unfollow(ctx, "u1", "u2"))
	assert.ErrorIs(t, repo.Unfollow(ctx, "u1", "u2"), ErrFollowNotFound)
}

func TestFollowRepository_IDLists(t *testing.T) {
	db := setupDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Follow(ctx, "u1", "u2"))
	require.NoError(t, repo.Follow(ctx, "u1", "u3"))
	require.NoError(t, repo.Follow(ctx, "u3", "u1"))

	following, err := repo.FollowingIDs(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, following)

	followers, err := repo.FollowerIDs(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u3"}, followers)
}

func TestConnectionRepository_GetBetweenBothDirections(t *testing.T) {
	db := setupDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	conn, err := repo.Create(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)

	got, err := repo.GetBetween(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, conn.ID, got.ID)

	got, err = repo.GetBetween(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, conn.ID, got.ID)

	_, err = repo.GetBetween(ctx, "u1", "u3")
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestConnectionRepository_AcceptOnlyPending(t *testing.T) {
	db := setupDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	conn, err := repo.Create(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, repo.Accept(ctx, conn.ID))

	got, err := repo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted())

	// Accepting again hits no pending row.
	assert.ErrorIs(t, repo.Accept(ctx, conn.ID), ErrConnectionNotFound)
}

func TestConnectionRepository_CountCreatedSince(t *testing.T) {
	db := setupDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, "u1", "peer"+string(rune('a'+i)))
		require.NoError(t, err)
	}

	count, err := repo.CountCreatedSince(ctx, "u1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = repo.CountCreatedSince(ctx, "u1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestConnectionRepository_PartnerAndPendingIDs(t *testing.T) {
	db := setupDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()

	out, err := repo.Create(ctx, "me", "friend")
	require.NoError(t, err)
	require.NoError(t, repo.Accept(ctx, out.ID))

	in, err := repo.Create(ctx, "other", "me")
	require.NoError(t, err)
	require.NoError(t, repo.Accept(ctx, in.ID))

	_, err = repo.Create(ctx, "stranger", "me")
	require.NoError(t, err)

	partners, err := repo.AcceptedPartnerIDs(ctx, "me")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"friend", "other"}, partners)

	pending, err := repo.PendingSenderIDs(ctx, "me")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"stranger"}, pending)
}

func TestPostRepository_ToggleLikeIdempotent(t *testing.T) {
	db := setupDB(t)
	repo := NewGormPostRepository(db)
	ctx := context.Background()

	post := &domain.Post{ID: "p1", UserID: "u1", Content: "hello", PostType: domain.PostTypeText}
	require.NoError(t, repo.Create(ctx, post))

	liked, err := repo.ToggleLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.ToggleLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.False(t, liked)

	ids, err := repo.LikeUserIDs(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = repo.ToggleLike(ctx, "missing", "u2")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostRepository_FeedNewestFirst(t *testing.T) {
	db := setupDB(t)
	repo := NewGormPostRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Post{ID: "p1", UserID: "u1", Content: "first", PostType: domain.PostTypeText}))
	require.NoError(t, repo.Create(ctx, &domain.Post{ID: "p2", UserID: "u2", Content: "second", PostType: domain.PostTypeText}))
	require.NoError(t, repo.Create(ctx, &domain.Post{ID: "p3", UserID: "u3", Content: "not in feed", PostType: domain.PostTypeText}))

	// Spread creation times so ordering is deterministic.
	require.NoError(t, db.Exec(`UPDATE posts SET created_at = ? WHERE id = ?`, time.Now().Add(-time.Hour), "p1").Error)

	posts, err := repo.Feed(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p2", posts[0].ID)
	assert.Equal(t, "p1", posts[1].ID)
}

func TestPostRepository_DeleteByAuthor(t *testing.T) {
	db := setupDB(t)
	repo := NewGormPostRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Post{ID: "p1", UserID: "u1", Content: "x", PostType: domain.PostTypeText}))
	_, err := repo.ToggleLike(ctx, "p1", "u2")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByAuthor(ctx, "u1"))

	_, err = repo.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	var likes int64
	require.NoError(t, db.Model(&domain.PostLikeModel{}).Count(&likes).Error)
	assert.EqualValues(t, 0, likes)
}

func TestStoryRepository_ActiveAndExpired(t *testing.T) {
	db := setupDB(t)
	repo := NewGormStoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Story{ID: "s1", UserID: "u1", Content: "fresh", MediaType: domain.MediaTypeText}))
	require.NoError(t, repo.Create(ctx, &domain.Story{ID: "s2", UserID: "u1", Content: "old", MediaType: domain.MediaTypeText}))
	require.NoError(t, db.Exec(`UPDATE stories SET created_at = ? WHERE id = ?`, time.Now().Add(-25*time.Hour), "s2").Error)

	cutoff := time.Now().Add(-domain.StoryTTL)

	active, err := repo.ActiveByAuthors(ctx, []string{"u1"}, cutoff)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "s1", active[0].ID)

	expired, err := repo.ExpiredIDs(ctx, cutoff)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s2"}, expired)

	require.NoError(t, repo.Delete(ctx, "s2"))
	assert.ErrorIs(t, repo.Delete(ctx, "s2"), ErrStoryNotFound)
}

func TestMessageRepository_ConversationAndSeen(t *testing.T) {
	db := setupDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m1", FromUserID: "u1", ToUserID: "u2", Text: "hi", MessageType: domain.MediaTypeText}))
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m2", FromUserID: "u2", ToUserID: "u1", Text: "hey", MessageType: domain.MediaTypeText}))
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m3", FromUserID: "u1", ToUserID: "u3", Text: "elsewhere", MessageType: domain.MediaTypeText}))
	require.NoError(t, db.Exec(`UPDATE messages SET created_at = ? WHERE id = ?`, time.Now().Add(-time.Minute), "m1").Error)

	conv, err := repo.Conversation(ctx, "u1", "u2")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "m1", conv[0].ID)
	assert.Equal(t, "m2", conv[1].ID)

	counts, err := repo.UnseenCounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u2": 1}, counts)

	require.NoError(t, repo.MarkSeen(ctx, "u2", "u1"))

	counts, err = repo.UnseenCounts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestMessageRepository_ByParticipantAndUsersWithUnseen(t *testing.T) {
	db := setupDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m1", FromUserID: "u1", ToUserID: "u2", Text: "a", MessageType: domain.MediaTypeText}))
	require.NoError(t, repo.Create(ctx, &domain.Message{ID: "m2", FromUserID: "u3", ToUserID: "u1", Text: "b", MessageType: domain.MediaTypeText}))
	require.NoError(t, db.Exec(`UPDATE messages SET created_at = ? WHERE id = ?`, time.Now().Add(-time.Minute), "m1").Error)

	msgs, err := repo.ByParticipant(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)

	ids, err := repo.UsersWithUnseen(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
}
