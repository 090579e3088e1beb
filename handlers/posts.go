package handlers

import (
	"net/http"

	"socialapp/models"
	"socialapp/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePost(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req services.CreatePostInput
	if !bind(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Create(ctx, me.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) LikePost(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	likes, err := h.posts.LikeToggle(ctx, me.ID, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

func (h *Handler) CommentPost(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	var req services.CommentInput
	if !bind(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Comment(ctx, me.ID, postID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.posts.Delete(ctx, me.ID, postID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *Handler) AllPosts(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	respondPosts(c, func() ([]models.PostView, error) { return h.posts.All(ctx) })
}

func (h *Handler) FollowingPosts(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	respondPosts(c, func() ([]models.PostView, error) { return h.posts.Following(ctx, me.ID) })
}

func (h *Handler) UserPosts(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	respondPosts(c, func() ([]models.PostView, error) { return h.posts.ByUsername(ctx, c.Param("username")) })
}

func (h *Handler) LikedPosts(c *gin.Context) {
	userID, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	respondPosts(c, func() ([]models.PostView, error) { return h.posts.LikedBy(ctx, userID) })
}

func respondPosts(c *gin.Context, query func() ([]models.PostView, error)) {
	posts, err := query()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
