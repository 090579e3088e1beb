package services

import (
	"context"
	"errors"
	"fmt"

	"socialapp/apperr"
	"socialapp/database"
	"socialapp/metrics"
	"socialapp/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier delivers an event to the live sessions of a user.
type Notifier interface {
	SendToUser(userID, eventType string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) SendToUser(string, string, interface{}) {}

type NotificationService struct {
	notifications NotificationStore
	users         UserStore
	notifier      Notifier
}

// NewNotificationService wires the emitter. A nil notifier disables live push.
func NewNotificationService(notifications NotificationStore, users UserStore, notifier Notifier) *NotificationService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &NotificationService{notifications: notifications, users: users, notifier: notifier}
}

// Emit persists a notification. There is no deduplication; every call
// creates a record. Live delivery happens only after persistence succeeds.
func (s *NotificationService) Emit(ctx context.Context, from, to primitive.ObjectID, kind models.NotificationType) (*models.Notification, error) {
	n := &models.Notification{
		From: from,
		To:   to,
		Type: kind,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("saving %s notification: %w", kind, err)
	}

	metrics.NotificationEmitted(string(kind))
	s.notifier.SendToUser(to.Hex(), "notification", n)
	return n, nil
}

// List returns the recipient's notifications newest first and marks them read.
func (s *NotificationService) List(ctx context.Context, to primitive.ObjectID) ([]models.NotificationView, error) {
	list, err := s.notifications.ListNotifications(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	senders, err := s.users.FindUsersByIDs(ctx, lo.Uniq(lo.Map(list, func(n models.Notification, _ int) primitive.ObjectID {
		return n.From
	})))
	if err != nil {
		return nil, fmt.Errorf("resolving senders: %w", err)
	}
	byID := lo.KeyBy(senders, func(u models.User) primitive.ObjectID { return u.ID })

	views := make([]models.NotificationView, len(list))
	for i, n := range list {
		views[i] = models.NotificationView{
			ID:        n.ID,
			To:        n.To,
			Type:      n.Type,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		if u, ok := byID[n.From]; ok {
			views[i].From = &models.NotificationSender{ID: u.ID, Username: u.Username, ProfileImg: u.ProfileImg}
		}
	}

	if err := s.notifications.MarkNotificationsRead(ctx, to); err != nil {
		return nil, fmt.Errorf("marking notifications read: %w", err)
	}
	return views, nil
}

func (s *NotificationService) DeleteAll(ctx context.Context, to primitive.ObjectID) (int64, error) {
	n, err := s.notifications.DeleteNotifications(ctx, to)
	if err != nil {
		return 0, fmt.Errorf("deleting notifications: %w", err)
	}
	return n, nil
}

func (s *NotificationService) DeleteOne(ctx context.Context, to, id primitive.ObjectID) error {
	err := s.notifications.DeleteNotification(ctx, id, to)
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound("Notification not found")
	}
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	return nil
}
