package services

import (
	"context"

	"socialapp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore persists users and the follow / liked-post edges stored on them.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SampleUsers(ctx context.Context, exclude primitive.ObjectID, size int) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error)

	AddFollow(ctx context.Context, follower, target primitive.ObjectID) (bool, error)
	RemoveFollow(ctx context.Context, follower, target primitive.ObjectID) (bool, error)
	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) ([]primitive.ObjectID, bool, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) ([]primitive.ObjectID, bool, error)
	AppendComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, to primitive.ObjectID) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, to primitive.ObjectID) error
	DeleteNotifications(ctx context.Context, to primitive.ObjectID) (int64, error)
	DeleteNotification(ctx context.Context, id, to primitive.ObjectID) error
}

// Store is everything the services need from persistence.
type Store interface {
	UserStore
	PostStore
	NotificationStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
