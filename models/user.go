package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`

	Followers  []primitive.ObjectID `bson:"followers" json:"followers"`
	Following  []primitive.ObjectID `bson:"following" json:"following"`
	LikedPosts []primitive.ObjectID `bson:"likedPosts" json:"likedPosts"`

	// Profile fields
	ProfileImg string `bson:"profileImg" json:"profileImg"`
	CoverImg   string `bson:"coverImg" json:"coverImg"`
	Bio        string `bson:"bio" json:"bio"`
	Link       string `bson:"link" json:"link"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Public returns a copy safe to hand to clients. The hash is cleared as well as
// excluded by the json tag so it cannot leak through other encoders.
func (u User) Public() User {
	u.Password = ""
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.LikedPosts == nil {
		u.LikedPosts = []primitive.ObjectID{}
	}
	return u
}

// UserUpdate is a partial profile update. A nil field is left untouched; a
// non-nil field is written even when it points at the empty string.
type UserUpdate struct {
	FullName   *string `json:"fullName"`
	Email      *string `json:"email"`
	Username   *string `json:"username"`
	Bio        *string `json:"bio"`
	Link       *string `json:"link"`
	ProfileImg *string `json:"profileImg"`
	CoverImg   *string `json:"coverImg"`

	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`

	// Set by the service once the new password is hashed.
	PasswordHash *string `json:"-"`
}

// Empty reports whether the update carries no stored field.
func (u UserUpdate) Empty() bool {
	return u.FullName == nil && u.Email == nil && u.Username == nil && u.Bio == nil &&
		u.Link == nil && u.ProfileImg == nil && u.CoverImg == nil && u.PasswordHash == nil
}
