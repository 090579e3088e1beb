package database

import (
	"context"
	"time"

	"socialapp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *Mongo) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	_, err := m.Posts.InsertOne(ctx, post)
	return err
}

func (m *Mongo) FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := m.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (m *Mongo) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPosts returns matching posts newest first.
func (m *Mongo) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query := bson.M{}
	if filter.Authors != nil {
		query["user"] = bson.M{"$in": filter.Authors}
	}
	if filter.IDs != nil {
		query["_id"] = bson.M{"$in": filter.IDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := m.Posts.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AddLike adds userID to the post's likes if absent. It returns the resulting
// like set and whether this call added the entry.
func (m *Mongo) AddLike(ctx context.Context, postID, userID primitive.ObjectID) ([]primitive.ObjectID, bool, error) {
	return m.updateLikes(ctx,
		bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": userID}},
		postID,
	)
}

// RemoveLike pulls userID from the post's likes. It returns the resulting like
// set and whether this call removed the entry.
func (m *Mongo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) ([]primitive.ObjectID, bool, error) {
	return m.updateLikes(ctx,
		bson.M{"_id": postID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
		postID,
	)
}

func (m *Mongo) updateLikes(ctx context.Context, filter, update bson.M, postID primitive.ObjectID) ([]primitive.ObjectID, bool, error) {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var post models.Post
	err := m.Posts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err == nil {
		return nonNil(post.Likes), true, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, false, err
	}

	// Either the post is gone or the like set was already in the wanted state.
	current, err := m.FindPostByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return nonNil(current.Likes), false, nil
}

func (m *Mongo) AppendComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		opts,
	).Decode(&post)
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
