package database

import (
	"context"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"socialapp/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a process-local store with the same semantics as Mongo. Every
// read returns a copy, so callers never share slices with the store.
type Memory struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	notifications map[primitive.ObjectID]*models.Notification
	now           func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[primitive.ObjectID]*models.User),
		posts:         make(map[primitive.ObjectID]*models.Post),
		notifications: make(map[primitive.ObjectID]*models.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	c.LikedPosts = slices.Clone(u.LikedPosts)
	return &c
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

// Users

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Followers = nonNil(user.Followers)
	user.Following = nonNil(user.Following)
	user.LikedPosts = nonNil(user.LikedPosts)

	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *Memory) findUser(match func(*models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.Username == username })
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.Email == email })
}

func (m *Memory) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []models.User{}
	for _, id := range lo.Uniq(ids) {
		if u, ok := m.users[id]; ok {
			users = append(users, *copyUser(u))
		}
	}
	return users, nil
}

func (m *Memory) SampleUsers(_ context.Context, exclude primitive.ObjectID, size int) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []models.User{}
	for id, u := range m.users {
		if id != exclude {
			users = append(users, *copyUser(u))
		}
	}
	rand.Shuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] })
	if len(users) > size {
		users = users[:size]
	}
	return users, nil
}

func (m *Memory) UpdateUser(_ context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for otherID, other := range m.users {
		if otherID == id {
			continue
		}
		if update.Username != nil && other.Username == *update.Username {
			return nil, ErrDuplicate
		}
		if update.Email != nil && other.Email == *update.Email {
			return nil, ErrDuplicate
		}
	}

	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&u.FullName, update.FullName)
	apply(&u.Email, update.Email)
	apply(&u.Username, update.Username)
	apply(&u.Bio, update.Bio)
	apply(&u.Link, update.Link)
	apply(&u.ProfileImg, update.ProfileImg)
	apply(&u.CoverImg, update.CoverImg)
	apply(&u.Password, update.PasswordHash)
	u.UpdatedAt = m.now()

	return copyUser(u), nil
}

func (m *Memory) AddFollow(_ context.Context, follower, target primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.users[follower]
	if !ok {
		return false, nil
	}
	if lo.Contains(f.Following, target) {
		return false, nil
	}
	f.Following = append(f.Following, target)
	if t, ok := m.users[target]; ok && !lo.Contains(t.Followers, follower) {
		t.Followers = append(t.Followers, follower)
	}
	return true, nil
}

func (m *Memory) RemoveFollow(_ context.Context, follower, target primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := false
	if f, ok := m.users[follower]; ok && lo.Contains(f.Following, target) {
		f.Following = lo.Without(f.Following, target)
		removed = true
	}
	if t, ok := m.users[target]; ok {
		t.Followers = lo.Without(t.Followers, follower)
	}
	return removed, nil
}

func (m *Memory) AddLikedPost(_ context.Context, userID, postID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok && !lo.Contains(u.LikedPosts, postID) {
		u.LikedPosts = append(u.LikedPosts, postID)
	}
	return nil
}

func (m *Memory) RemoveLikedPost(_ context.Context, userID, postID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		u.LikedPosts = lo.Without(u.LikedPosts, postID)
	}
	return nil
}

// Posts

func (m *Memory) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := m.now()
	post.CreatedAt, post.UpdatedAt = now, now
	post.Likes = nonNil(post.Likes)
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *Memory) FindPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPost(p), nil
}

func (m *Memory) DeletePost(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *Memory) ListPosts(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := []models.Post{}
	for _, p := range m.posts {
		if filter.Authors != nil && !lo.Contains(filter.Authors, p.User) {
			continue
		}
		if filter.IDs != nil && !lo.Contains(filter.IDs, p.ID) {
			continue
		}
		posts = append(posts, *copyPost(p))
	}

	slices.SortFunc(posts, func(a, b models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return posts, nil
}

func (m *Memory) AddLike(_ context.Context, postID, userID primitive.ObjectID) ([]primitive.ObjectID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if lo.Contains(p.Likes, userID) {
		return slices.Clone(p.Likes), false, nil
	}
	p.Likes = append(p.Likes, userID)
	p.UpdatedAt = m.now()
	return slices.Clone(p.Likes), true, nil
}

func (m *Memory) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) ([]primitive.ObjectID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if !lo.Contains(p.Likes, userID) {
		return slices.Clone(p.Likes), false, nil
	}
	p.Likes = lo.Without(p.Likes, userID)
	p.UpdatedAt = m.now()
	return slices.Clone(p.Likes), true, nil
}

func (m *Memory) AppendComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	p.Comments = append(p.Comments, comment)
	p.UpdatedAt = m.now()
	return copyPost(p), nil
}

// Notifications

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	c := *n
	m.notifications[n.ID] = &c
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []models.Notification{}
	for _, n := range m.notifications {
		if n.To == to {
			list = append(list, *n)
		}
	}
	slices.SortFunc(list, func(a, b models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return list, nil
}

func (m *Memory) MarkNotificationsRead(_ context.Context, to primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.notifications {
		if n.To == to {
			n.Read = true
		}
	}
	return nil
}

func (m *Memory) DeleteNotifications(_ context.Context, to primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, n := range m.notifications {
		if n.To == to {
			delete(m.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) DeleteNotification(_ context.Context, id, to primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok || n.To != to {
		return ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}
