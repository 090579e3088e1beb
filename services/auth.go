package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"socialapp/apperr"
	"socialapp/auth"
	"socialapp/database"
	"socialapp/metrics"
	"socialapp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const msgInvalidCredentials = "Invalid Credentials"

type SignupInput struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("Password must be at least 6 characters long")
	}
	return nil
}

// Register creates a user. Checks run in a fixed order: required fields,
// email shape, username taken, email taken, password length.
func (s *AuthService) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if !validEmail(in.Email) {
		return nil, apperr.Validation("Invalid email format")
	}

	if taken, err := s.exists(ctx, s.users.FindUserByUsername, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("Username is already taken")
	}
	if taken, err := s.exists(ctx, s.users.FindUserByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("Email is already taken")
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperr.Validation("Password must be at most 72 bytes long")
	}
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict("Username or email is already taken")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	metrics.Mutation(metrics.OpSignup)
	public := user.Public()
	return &public, nil
}

func (s *AuthService) exists(ctx context.Context, find func(context.Context, string) (*models.User, error), key string) (bool, error) {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("looking up user: %w", err)
	}
}

// Login fails with the same error for an unknown username and a wrong
// password, and runs a hash comparison in both cases.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	user, err := s.users.FindUserByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	hash := ""
	if user != nil {
		hash = user.Password
	}
	if !auth.CheckPassword(hash, in.Password) || user == nil {
		return nil, apperr.Auth(msgInvalidCredentials)
	}

	public := user.Public()
	return &public, nil
}

// WhoAmI re-reads the identity resolved by the authorization gate.
func (s *AuthService) WhoAmI(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	public := user.Public()
	return &public, nil
}
