package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	From      primitive.ObjectID `bson:"from" json:"from"`
	To        primitive.ObjectID `bson:"to" json:"to"`
	Type      NotificationType   `bson:"type" json:"type"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type NotificationSender struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	ProfileImg string             `json:"profileImg"`
}

type NotificationView struct {
	ID        primitive.ObjectID  `json:"_id"`
	From      *NotificationSender `json:"from"`
	To        primitive.ObjectID  `json:"to"`
	Type      NotificationType    `json:"type"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"createdAt"`
}
