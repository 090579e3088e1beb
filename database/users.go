package database

import (
	"context"
	"time"

	"socialapp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}

	_, err := m.Users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := m.Users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (m *Mongo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

func (m *Mongo) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SampleUsers returns up to size random users other than exclude.
func (m *Mongo) SampleUsers(ctx context.Context, exclude primitive.ObjectID, size int) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: exclude}}}}}},
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
	}

	cursor, err := m.Users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *Mongo) UpdateUser(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	setIf := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setIf("fullName", update.FullName)
	setIf("email", update.Email)
	setIf("username", update.Username)
	setIf("bio", update.Bio)
	setIf("link", update.Link)
	setIf("profileImg", update.ProfileImg)
	setIf("coverImg", update.CoverImg)
	setIf("password", update.PasswordHash)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := m.Users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// AddFollow records follower -> target on both documents. It reports false
// without writing when the edge already exists on the follower's side.
func (m *Mongo) AddFollow(ctx context.Context, follower, target primitive.ObjectID) (bool, error) {
	res, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": follower, "following": bson.M{"$ne": target}},
		bson.M{"$push": bson.M{"following": target}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount == 0 {
		return false, nil
	}

	_, err = m.Users.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$addToSet": bson.M{"followers": follower}},
	)
	return err == nil, err
}

// RemoveFollow drops follower -> target from both documents. It reports false
// when the follower was not following target.
func (m *Mongo) RemoveFollow(ctx context.Context, follower, target primitive.ObjectID) (bool, error) {
	res, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": follower, "following": target},
		bson.M{"$pull": bson.M{"following": target}},
	)
	if err != nil {
		return false, err
	}

	// The target side is pulled unconditionally so a previously half-applied
	// edge gets repaired.
	_, err = m.Users.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$pull": bson.M{"followers": follower}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (m *Mongo) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	_, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"likedPosts": postID}},
	)
	return err
}

func (m *Mongo) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	_, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"likedPosts": postID}},
	)
	return err
}
