package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialapp/apperr"
	"socialapp/auth"
	"socialapp/database"
	"socialapp/media"
	"socialapp/metrics"
	"socialapp/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	suggestionSample = 10
	suggestionLimit  = 4
)

type UserService struct {
	users         UserStore
	notifications *NotificationService
	images        media.Host
}

func NewUserService(users UserStore, notifications *NotificationService, images media.Host) *UserService {
	return &UserService{users: users, notifications: notifications, images: images}
}

func (s *UserService) load(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

// FollowToggle flips whether actor follows target and reports the new state.
// Only a transition into "following" emits a notification.
func (s *UserService) FollowToggle(ctx context.Context, actor, target primitive.ObjectID) (bool, error) {
	if actor == target {
		return false, apperr.Validation("Cannot follow/unfollow yourself")
	}
	if _, err := s.load(ctx, target); err != nil {
		return false, err
	}
	me, err := s.load(ctx, actor)
	if err != nil {
		return false, err
	}

	if lo.Contains(me.Following, target) {
		if _, err := s.users.RemoveFollow(ctx, actor, target); err != nil {
			return false, fmt.Errorf("unfollowing: %w", err)
		}
		metrics.Mutation(metrics.OpUnfollow)
		return false, nil
	}

	added, err := s.users.AddFollow(ctx, actor, target)
	if err != nil {
		return false, fmt.Errorf("following: %w", err)
	}
	if !added {
		// A concurrent request already created the edge and notified.
		return true, nil
	}
	metrics.Mutation(metrics.OpFollow)

	if _, err := s.notifications.Emit(ctx, actor, target, models.NotificationFollow); err != nil {
		return true, err
	}
	return true, nil
}

// Suggested returns up to four random users the actor does not follow yet.
func (s *UserService) Suggested(ctx context.Context, actor primitive.ObjectID) ([]models.User, error) {
	me, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}

	sample, err := s.users.SampleUsers(ctx, actor, suggestionSample)
	if err != nil {
		return nil, fmt.Errorf("sampling users: %w", err)
	}

	suggested := lo.Filter(sample, func(u models.User, _ int) bool {
		return u.ID != actor && !lo.Contains(me.Following, u.ID)
	})
	if len(suggested) > suggestionLimit {
		suggested = suggested[:suggestionLimit]
	}
	return lo.Map(suggested, func(u models.User, _ int) models.User { return u.Public() }), nil
}

// UpdateProfile applies a partial update to the actor's own profile. Image
// fields carry an upload payload; an empty string clears the image.
func (s *UserService) UpdateProfile(ctx context.Context, actor primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	user, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := s.preparePassword(user, &update); err != nil {
		return nil, err
	}
	if err := s.prepareIdentity(ctx, user, &update); err != nil {
		return nil, err
	}

	profileImg, oldProfile, err := s.stageImage(ctx, update.ProfileImg, user.ProfileImg)
	if err != nil {
		return nil, err
	}
	coverImg, oldCover, err := s.stageImage(ctx, update.CoverImg, user.CoverImg)
	if err != nil {
		return nil, err
	}
	update.ProfileImg, update.CoverImg = profileImg, coverImg
	released := lo.Without([]string{oldProfile, oldCover}, "")

	if update.Empty() {
		public := user.Public()
		return &public, nil
	}

	updated, err := s.users.UpdateUser(ctx, actor, update)
	if errors.Is(err, database.ErrDuplicate) {
		return nil, apperr.Conflict("Username or email is already taken")
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	for _, url := range released {
		releaseImage(ctx, s.images, url)
	}

	public := updated.Public()
	return &public, nil
}

// stageImage uploads a new image payload. It returns the value to store and
// the URL that becomes unreferenced once the update is saved.
func (s *UserService) stageImage(ctx context.Context, next *string, current string) (*string, string, error) {
	if next == nil || *next == current {
		return nil, "", nil
	}
	if *next == "" {
		return next, current, nil
	}
	url, err := uploadImage(ctx, s.images, *next, media.FolderProfiles)
	if err != nil {
		return nil, "", err
	}
	return &url, current, nil
}

func (s *UserService) preparePassword(user *models.User, update *models.UserUpdate) error {
	current := lo.FromPtr(update.CurrentPassword)
	next := lo.FromPtr(update.NewPassword)
	update.CurrentPassword, update.NewPassword = nil, nil

	if current == "" && next == "" {
		return nil
	}
	if current == "" || next == "" {
		return apperr.Validation("Please provide both current and new password")
	}
	if !auth.CheckPassword(user.Password, current) {
		return apperr.Validation("Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hashed, err := auth.HashPassword(next)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return apperr.Validation("Password must be at most 72 bytes long")
	}
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	update.PasswordHash = &hashed
	return nil
}

func (s *UserService) prepareIdentity(ctx context.Context, user *models.User, update *models.UserUpdate) error {
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return apperr.Validation("Full name cannot be empty")
		}
		update.FullName = &name
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return apperr.Validation("Username cannot be empty")
		}
		update.Username = &username
		if username != user.Username {
			if err := s.ensureFree(ctx, s.users.FindUserByUsername, username, "Username is already taken"); err != nil {
				return err
			}
		}
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if !validEmail(email) {
			return apperr.Validation("Invalid email format")
		}
		update.Email = &email
		if email != user.Email {
			if err := s.ensureFree(ctx, s.users.FindUserByEmail, email, "Email is already taken"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *UserService) ensureFree(ctx context.Context, find func(context.Context, string) (*models.User, error), key, msg string) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return apperr.Conflict(msg)
	case errors.Is(err, database.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("looking up user: %w", err)
	}
}
