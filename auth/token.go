package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CookieName = "jwt"

	DefaultTokenLifetime = 15 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies session tokens and binds them to the session
// cookie.
type Sessions struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

func NewSessions(secret string, lifetime time.Duration, secure bool) *Sessions {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &Sessions{
		secret:   []byte(secret),
		lifetime: lifetime,
		secure:   secure,
		now:      time.Now,
	}
}

func (s *Sessions) Issue(userID primitive.ObjectID) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject user id. Every
// failure is reported as ErrInvalidToken.
func (s *Sessions) Verify(tokenString string) (primitive.ObjectID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// Start issues a token for userID and sets it as the session cookie.
func (s *Sessions) Start(c *gin.Context, userID primitive.ObjectID) error {
	token, err := s.Issue(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(s.lifetime/time.Second), "/", "", s.secure, true)
	return nil
}

// End clears the session cookie.
func (s *Sessions) End(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}
