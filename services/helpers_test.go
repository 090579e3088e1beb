package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"socialapp/database"
	"socialapp/models"

	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	mu         sync.Mutex
	uploads    []string
	destroyed  []string
	failUpload bool
	failDelete bool
}

func (h *fakeHost) Upload(_ context.Context, payload, folder string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failUpload {
		return "", errors.New("upload refused")
	}
	h.uploads = append(h.uploads, payload)
	return fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/%s/img%d.png", folder, len(h.uploads)), nil
}

func (h *fakeHost) Destroy(_ context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failDelete {
		return errors.New("delete refused")
	}
	h.destroyed = append(h.destroyed, url)
	return nil
}

type sent struct {
	userID    string
	eventType string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) SendToUser(userID, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{userID, eventType})
}

type fixture struct {
	store         *database.Memory
	host          *fakeHost
	notifier      *recordingNotifier
	auth          *AuthService
	users         *UserService
	posts         *PostService
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := database.NewMemory()
	host := &fakeHost{}
	notifier := &recordingNotifier{}
	notifications := NewNotificationService(store, store, notifier)
	return &fixture{
		store:         store,
		host:          host,
		notifier:      notifier,
		auth:          NewAuthService(store),
		users:         NewUserService(store, notifications, host),
		posts:         NewPostService(store, store, notifications, host),
		notifications: notifications,
	}
}

func (f *fixture) signup(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), SignupInput{
		FullName: username + " full",
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) inbox(t *testing.T, u *models.User) []models.Notification {
	t.Helper()
	list, err := f.store.ListNotifications(context.Background(), u.ID)
	require.NoError(t, err)
	return list
}
