package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialapp/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", apperr.Validation("Please provide a comment"), http.StatusBadRequest, `{"error":"Please provide a comment"}`},
		{"conflict", apperr.Conflict("Email is already taken"), http.StatusBadRequest, `{"error":"Email is already taken"}`},
		{"auth", apperr.Auth("Invalid Credentials"), http.StatusUnauthorized, `{"error":"Invalid Credentials"}`},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, `{"error":"nope"}`},
		{"not found", apperr.NotFound("Post not found"), http.StatusNotFound, `{"error":"Post not found"}`},
		{"internal", errors.New("socket closed"), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestPathID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "zzz"}}

	_, ok := pathID(c, "id", "Post not found")
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "64b7f0c2a1b2c3d4e5f60718"}}
	id, ok := pathID(c, "id", "Post not found")
	assert.True(t, ok)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id.Hex())
}

func TestActorWithoutGate(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := actor(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
