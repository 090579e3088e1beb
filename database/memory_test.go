package database

import (
	"context"
	"testing"
	"time"

	"socialapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUser(t *testing.T, m *Memory, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, m.CreateUser(context.Background(), u))
	return u
}

func TestMemoryCreateUserUnique(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	newUser(t, m, "alice")

	err := m.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = m.CreateUser(ctx, &models.User{Username: "other", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryReadsAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := newUser(t, m, "alice")

	got, err := m.FindUserByID(ctx, alice.ID)
	require.NoError(t, err)
	got.Following = append(got.Following, primitive.NewObjectID())
	got.Username = "mallory"

	again, err := m.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, again.Following)
}

func TestMemoryFollowEdges(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := newUser(t, m, "alice")
	bob := newUser(t, m, "bob")

	added, err := m.AddFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.AddFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, added)

	a, _ := m.FindUserByID(ctx, alice.ID)
	b, _ := m.FindUserByID(ctx, bob.ID)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, a.Following)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, b.Followers)

	removed, err := m.RemoveFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.RemoveFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	a, _ = m.FindUserByID(ctx, alice.ID)
	b, _ = m.FindUserByID(ctx, bob.ID)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)
}

func TestMemoryLikesExactlyOnce(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := newUser(t, m, "alice")
	post := &models.Post{User: alice.ID, Text: "hi"}
	require.NoError(t, m.CreatePost(ctx, post))

	likes, added, err := m.AddLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, likes)

	likes, added, err = m.AddLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, likes, 1)

	likes, removed, err := m.RemoveLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, likes)

	_, _, err = m.AddLike(ctx, primitive.NewObjectID(), alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListPostsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := newUser(t, m, "alice")
	bob := newUser(t, m, "bob")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := &models.Post{User: alice.ID, Text: "first"}
	second := &models.Post{User: bob.ID, Text: "second"}
	third := &models.Post{User: alice.ID, Text: "third"}
	for _, p := range []*models.Post{first, second, third} {
		require.NoError(t, m.CreatePost(ctx, p))
	}

	all, err := m.ListPosts(ctx, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Text, all[1].Text, all[2].Text})

	byAlice, err := m.ListPosts(ctx, models.PostFilter{Authors: []primitive.ObjectID{alice.ID}})
	require.NoError(t, err)
	assert.Len(t, byAlice, 2)

	none, err := m.ListPosts(ctx, models.PostFilter{Authors: []primitive.ObjectID{}})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	byID, err := m.ListPosts(ctx, models.PostFilter{IDs: []primitive.ObjectID{second.ID}})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, second.ID, byID[0].ID)
}

func TestMemoryUpdateUserPartial(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := newUser(t, m, "alice")
	newUser(t, m, "bob")

	bio := "hello"
	updated, err := m.UpdateUser(ctx, alice.ID, models.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "alice", updated.Username)

	empty := ""
	updated, err = m.UpdateUser(ctx, alice.ID, models.UserUpdate{Bio: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Bio)

	taken := "bob"
	_, err = m.UpdateUser(ctx, alice.ID, models.UserUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = m.UpdateUser(ctx, primitive.NewObjectID(), models.UserUpdate{Bio: &bio})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySampleUsersExcludes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice := newUser(t, m, "alice")
	for _, name := range []string{"b", "c", "d", "e", "f"} {
		newUser(t, m, name)
	}

	sample, err := m.SampleUsers(ctx, alice.ID, 3)
	require.NoError(t, err)
	assert.Len(t, sample, 3)
	for _, u := range sample {
		assert.NotEqual(t, alice.ID, u.ID)
	}
}

func TestMemoryNotifications(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	n1 := &models.Notification{From: bob, To: alice, Type: models.NotificationLike}
	n2 := &models.Notification{From: bob, To: alice, Type: models.NotificationFollow}
	other := &models.Notification{From: alice, To: bob, Type: models.NotificationComment}
	for _, n := range []*models.Notification{n1, n2, other} {
		require.NoError(t, m.CreateNotification(ctx, n))
	}

	list, err := m.ListNotifications(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, m.MarkNotificationsRead(ctx, alice))
	list, _ = m.ListNotifications(ctx, alice)
	for _, n := range list {
		assert.True(t, n.Read)
	}

	assert.ErrorIs(t, m.DeleteNotification(ctx, other.ID, alice), ErrNotFound)
	require.NoError(t, m.DeleteNotification(ctx, n1.ID, alice))

	deleted, err := m.DeleteNotifications(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	list, _ = m.ListNotifications(ctx, bob)
	assert.Len(t, list, 1)
}
