package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Text      string               `bson:"text,omitempty" json:"text,omitempty"`
	Img       string               `bson:"img,omitempty" json:"img,omitempty"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	Text      string             `json:"text"`
	User      *User              `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
}

// PostView is a post with its owner and comment authors resolved. Populated in
// responses only.
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *User                `json:"user"`
	Text      string               `json:"text,omitempty"`
	Img       string               `json:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// PostFilter selects posts for listing. Nil slices mean "no constraint"; an
// empty non-nil slice matches nothing.
type PostFilter struct {
	Authors []primitive.ObjectID
	IDs     []primitive.ObjectID
}
