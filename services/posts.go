package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialapp/apperr"
	"socialapp/database"
	"socialapp/media"
	"socialapp/metrics"
	"socialapp/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePostInput struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type CommentInput struct {
	Text string `json:"text"`
}

type PostService struct {
	posts         PostStore
	users         UserStore
	notifications *NotificationService
	images        media.Host
}

func NewPostService(posts PostStore, users UserStore, notifications *NotificationService, images media.Host) *PostService {
	return &PostService{posts: posts, users: users, notifications: notifications, images: images}
}

func (s *PostService) load(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.FindPostByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up post: %w", err)
	}
	return post, nil
}

// Create stores a post with text, an image, or both. The image is uploaded
// first; if that fails nothing is stored.
func (s *PostService) Create(ctx context.Context, owner primitive.ObjectID, in CreatePostInput) (*models.PostView, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" && in.Img == "" {
		return nil, apperr.Validation("Please provide text or image")
	}

	post := &models.Post{User: owner, Text: text}
	if in.Img != "" {
		url, err := uploadImage(ctx, s.images, in.Img, media.FolderPosts)
		if err != nil {
			return nil, err
		}
		post.Img = url
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		releaseImage(ctx, s.images, post.Img)
		return nil, fmt.Errorf("creating post: %w", err)
	}
	metrics.Mutation(metrics.OpPostCreate)

	views, err := s.resolve(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// LikeToggle flips actor's like on the post and returns the resulting like
// set. A user appears in the set at most once; only a like notifies.
func (s *PostService) LikeToggle(ctx context.Context, actor, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if lo.Contains(post.Likes, actor) {
		likes, _, err := s.posts.RemoveLike(ctx, postID, actor)
		if err != nil {
			return nil, s.storeErr("unliking post", err)
		}
		if err := s.users.RemoveLikedPost(ctx, actor, postID); err != nil {
			return nil, fmt.Errorf("unliking post: %w", err)
		}
		metrics.Mutation(metrics.OpUnlike)
		return likes, nil
	}

	likes, added, err := s.posts.AddLike(ctx, postID, actor)
	if err != nil {
		return nil, s.storeErr("liking post", err)
	}
	if !added {
		return likes, nil
	}
	if err := s.users.AddLikedPost(ctx, actor, postID); err != nil {
		return nil, fmt.Errorf("liking post: %w", err)
	}
	metrics.Mutation(metrics.OpLike)

	if _, err := s.notifications.Emit(ctx, actor, post.User, models.NotificationLike); err != nil {
		return nil, err
	}
	return likes, nil
}

// Comment appends a comment and notifies the post owner.
func (s *PostService) Comment(ctx context.Context, actor, postID primitive.ObjectID, in CommentInput) (*models.PostView, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperr.Validation("Please provide a comment")
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		User:      actor,
		CreatedAt: time.Now().UTC(),
	}
	post, err := s.posts.AppendComment(ctx, postID, comment)
	if err != nil {
		return nil, s.storeErr("commenting", err)
	}
	metrics.Mutation(metrics.OpComment)

	if _, err := s.notifications.Emit(ctx, actor, post.User, models.NotificationComment); err != nil {
		return nil, err
	}

	views, err := s.resolve(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes the actor's own post. The hosted image is released
// afterwards on a best-effort basis.
func (s *PostService) Delete(ctx context.Context, actor, postID primitive.ObjectID) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if post.User != actor {
		return apperr.Forbidden("You are not authorized to delete this post")
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return s.storeErr("deleting post", err)
	}
	metrics.Mutation(metrics.OpPostDelete)

	releaseImage(ctx, s.images, post.Img)
	return nil
}

func (s *PostService) All(ctx context.Context) ([]models.PostView, error) {
	return s.list(ctx, models.PostFilter{})
}

// Following lists posts by the users the actor follows.
func (s *PostService) Following(ctx context.Context, actor primitive.ObjectID) ([]models.PostView, error) {
	me, err := s.users.FindUserByID(ctx, actor)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return s.list(ctx, models.PostFilter{Authors: nonNilIDs(me.Following)})
}

func (s *PostService) ByUsername(ctx context.Context, username string) ([]models.PostView, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return s.list(ctx, models.PostFilter{Authors: []primitive.ObjectID{user.ID}})
}

func (s *PostService) LikedBy(ctx context.Context, userID primitive.ObjectID) ([]models.PostView, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return s.list(ctx, models.PostFilter{IDs: nonNilIDs(user.LikedPosts)})
}

func (s *PostService) list(ctx context.Context, filter models.PostFilter) ([]models.PostView, error) {
	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return s.resolve(ctx, posts)
}

// resolve replaces owner and comment author ids with public users, fetching
// all referenced users in one query.
func (s *PostService) resolve(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	var ids []primitive.ObjectID
	for _, p := range posts {
		ids = append(ids, p.User)
		for _, c := range p.Comments {
			ids = append(ids, c.User)
		}
	}
	users, err := s.users.FindUsersByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("resolving users: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for _, u := range users {
		public := u.Public()
		byID[u.ID] = &public
	}

	for i, p := range posts {
		views[i] = models.PostView{
			ID:        p.ID,
			User:      byID[p.User],
			Text:      p.Text,
			Img:       p.Img,
			Likes:     nonNilIDs(p.Likes),
			Comments:  make([]models.CommentView, len(p.Comments)),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		for j, c := range p.Comments {
			views[i].Comments[j] = models.CommentView{
				ID:        c.ID,
				Text:      c.Text,
				User:      byID[c.User],
				CreatedAt: c.CreatedAt,
			}
		}
	}
	return views, nil
}

func (s *PostService) storeErr(op string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound("Post not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nonNilIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
