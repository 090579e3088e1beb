package database

import (
	"context"
	"time"

	"socialapp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *Mongo) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := m.Notifications.InsertOne(ctx, n)
	return err
}

func (m *Mongo) ListNotifications(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := m.Notifications.Find(ctx, bson.M{"to": to}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (m *Mongo) MarkNotificationsRead(ctx context.Context, to primitive.ObjectID) error {
	_, err := m.Notifications.UpdateMany(ctx,
		bson.M{"to": to, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

func (m *Mongo) DeleteNotifications(ctx context.Context, to primitive.ObjectID) (int64, error) {
	res, err := m.Notifications.DeleteMany(ctx, bson.M{"to": to})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteNotification removes one notification owned by to.
func (m *Mongo) DeleteNotification(ctx context.Context, id, to primitive.ObjectID) error {
	res, err := m.Notifications.DeleteOne(ctx, bson.M{"_id": id, "to": to})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
