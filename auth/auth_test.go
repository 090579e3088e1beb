package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)

	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "secret1"))
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("secret1")
	require.NoError(t, err)
	b, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 80))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestIssueVerify(t *testing.T) {
	s := NewSessions("secret", 0, false)
	id := primitive.NewObjectID()

	token, err := s.Issue(id)
	require.NoError(t, err)

	got, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejects(t *testing.T) {
	s := NewSessions("secret", time.Hour, false)
	id := primitive.NewObjectID()

	other := NewSessions("other-secret", time.Hour, false)
	forged, err := other.Issue(id)
	require.NoError(t, err)

	expired := NewSessions("secret", time.Hour, false)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue(id)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: id.Hex()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "not-an-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badSubjectToken, err := badSubject.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":     "not.a.token",
		"wrong key":   forged,
		"expired":     stale,
		"alg none":    unsigned,
		"bad subject": badSubjectToken,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestDefaultLifetime(t *testing.T) {
	s := NewSessions("secret", 0, false)
	assert.Equal(t, 15*24*time.Hour, s.lifetime)
}

func TestStartSetsCookie(t *testing.T) {
	s := NewSessions("secret", DefaultTokenLifetime, true)
	id := primitive.NewObjectID()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	require.NoError(t, s.Start(c, id))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int(DefaultTokenLifetime/time.Second), cookie.MaxAge)

	got, err := s.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestEndClearsCookie(t *testing.T) {
	s := NewSessions("secret", DefaultTokenLifetime, false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	s.End(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
