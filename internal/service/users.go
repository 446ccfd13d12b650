package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

// SessionIssuer issues, rotates and revokes token pairs.
type SessionIssuer interface {
	Issue(ctx context.Context, caller auth.Caller) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// UserService implements account management and the user-facing channel views.
type UserService struct {
	users    repositories.UserRepository
	sessions SessionIssuer
	hasher   *auth.Hasher
	blobs    BlobStore
	views    *views.Composer
	validate *validation.Validator
	newID    func() string
}

// NewUserService wires a UserService.
func NewUserService(users repositories.UserRepository, sessions SessionIssuer, hasher *auth.Hasher,
	blobs BlobStore, composer *views.Composer, validate *validation.Validator) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		blobs:    blobs,
		views:    composer,
		validate: validate,
		newID:    uuid.NewString,
	}
}

// RegisterInput is the account data submitted at sign-up.
type RegisterInput struct {
	FullName string `json:"fullName" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"notblank,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register creates an account. The avatar is required, the cover image optional.
func (s *UserService) Register(ctx context.Context, in RegisterInput, avatar media.File, cover *media.File) (models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, err
	}

	avatarType, err := media.Require("avatar", avatar, media.Image)
	if err != nil {
		return models.User{}, err
	}
	var coverType media.Sniffed
	hasCover := cover != nil && cover.Size > 0
	if hasCover {
		if coverType, err = media.Require("coverImage", *cover, media.Image); err != nil {
			return models.User{}, err
		}
	}

	if _, err := s.users.FindByLogin(ctx, in.Email, in.Username); err == nil {
		return models.User{}, apperr.Conflict("user with email or username already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	id := s.newID()
	uploads := []upload{{field: "avatar", key: blobKey("avatars", id, s.newID(), avatarType.Extension),
		contentType: avatarType.ContentType, file: avatar}}
	if hasCover {
		uploads = append(uploads, upload{field: "coverImage", key: blobKey("covers", id, s.newID(), coverType.Extension),
			contentType: coverType.ContentType, file: *cover})
	}
	assets, err := uploadAll(ctx, s.blobs, uploads...)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       assets[0],
		PasswordHash: hash,
	}
	if hasCover {
		user.CoverImage = assets[1]
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		discard(ctx, s.blobs, assets...)
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apperr.Conflict("user with email or username already exists")
		}
		return models.User{}, err
	}

	logging.FromContext(ctx).Info("user registered", "userId", created.ID, "username", created.Username)
	return created, nil
}

// LoginInput identifies the account by email or username.
type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

// Session is a logged-in user with a fresh token pair.
type Session struct {
	User   models.User          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

// Login verifies credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if in.Email == "" && in.Username == "" {
		return Session{}, apperr.Validation("username or email is required",
			apperr.FieldError{Field: "username", Message: "username or email is required"})
	}
	if err := s.validate.Validate(in); err != nil {
		return Session{}, err
	}

	user, err := s.users.FindByLogin(ctx, in.Email, in.Username)
	if err != nil {
		return Session{}, notFound(err, "user does not exist")
	}
	if !s.hasher.Matches(user.PasswordHash, in.Password) {
		logging.FromContext(ctx).Warn("login password mismatch", "userId", user.ID)
		return Session{}, apperr.Unauthenticated("invalid user credentials")
	}

	tokens, err := s.sessions.Issue(ctx, auth.Caller{ID: user.ID, Username: user.Username})
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Tokens: tokens}, nil
}

// Refresh rotates the token pair of the user holding refreshToken.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return models.SessionTokens{}, apperr.Unauthenticated("refresh token is required")
	}

	tokens, err := s.sessions.Refresh(ctx, refreshToken)
	switch {
	case err == nil:
		return tokens, nil
	case errors.Is(err, auth.ErrRefreshTokenExpired):
		return models.SessionTokens{}, apperr.Unauthenticated("refresh token is expired")
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, repositories.ErrNotFound):
		return models.SessionTokens{}, apperr.Unauthenticated("invalid refresh token")
	default:
		return models.SessionTokens{}, err
	}
}

// Logout revokes the caller's refresh token.
func (s *UserService) Logout(ctx context.Context, caller auth.Caller) error {
	if err := s.sessions.Revoke(ctx, caller.ID); err != nil {
		return notFound(err, "user not found")
	}
	return nil
}

// ChangePasswordInput carries the current and the new password.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,nefield=OldPassword"`
}

// ChangePassword replaces the caller's password after verifying the old one.
func (s *UserService) ChangePassword(ctx context.Context, caller auth.Caller, in ChangePasswordInput) error {
	if err := s.validate.Validate(in); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return notFound(err, "user not found")
	}
	if !s.hasher.Matches(user.PasswordHash, in.OldPassword) {
		return apperr.Validation("invalid old password",
			apperr.FieldError{Field: "oldPassword", Message: "invalid old password"})
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	return notFound(s.users.UpdatePassword(ctx, caller.ID, hash), "user not found")
}

// CurrentUser returns the caller's account.
func (s *UserService) CurrentUser(ctx context.Context, caller auth.Caller) (models.User, error) {
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return models.User{}, notFound(err, "user not found")
	}
	return user, nil
}

// UpdateAccountInput carries the editable profile fields.
type UpdateAccountInput struct {
	FullName string `json:"fullName" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateAccount changes the caller's display name and email.
func (s *UserService) UpdateAccount(ctx context.Context, caller auth.Caller, in UpdateAccountInput) (models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Validate(in); err != nil {
		return models.User{}, err
	}
	user, err := s.users.UpdateAccount(ctx, caller.ID, in.FullName, in.Email)
	if errors.Is(err, repositories.ErrConflict) {
		return models.User{}, apperr.Conflict("email is already in use")
	}
	if err != nil {
		return models.User{}, notFound(err, "user not found")
	}
	return user, nil
}

// UpdateAvatar replaces the caller's avatar and deletes the previous blob.
func (s *UserService) UpdateAvatar(ctx context.Context, caller auth.Caller, file media.File) (models.User, error) {
	return s.replaceImage(ctx, caller, file, "avatar", "avatars",
		func(u models.User) models.Asset { return u.Avatar },
		s.users.UpdateAvatar)
}

// UpdateCoverImage replaces the caller's cover image and deletes the previous blob.
func (s *UserService) UpdateCoverImage(ctx context.Context, caller auth.Caller, file media.File) (models.User, error) {
	return s.replaceImage(ctx, caller, file, "coverImage", "covers",
		func(u models.User) models.Asset { return u.CoverImage },
		s.users.UpdateCoverImage)
}

func (s *UserService) replaceImage(ctx context.Context, caller auth.Caller, file media.File, field, prefix string,
	current func(models.User) models.Asset,
	save func(ctx context.Context, id string, asset models.Asset) (models.User, error)) (models.User, error) {
	sniffed, err := media.Require(field, file, media.Image)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return models.User{}, notFound(err, "user not found")
	}

	assets, err := uploadAll(ctx, s.blobs, upload{field: field,
		key: blobKey(prefix, user.ID, s.newID(), sniffed.Extension), contentType: sniffed.ContentType, file: file})
	if err != nil {
		return models.User{}, err
	}

	updated, err := save(ctx, user.ID, assets[0])
	if err != nil {
		discard(ctx, s.blobs, assets...)
		return models.User{}, notFound(err, "user not found")
	}
	discard(ctx, s.blobs, current(user))
	return updated, nil
}

// ChannelProfile composes the channel page of username relative to caller.
func (s *UserService) ChannelProfile(ctx context.Context, caller auth.Caller, username string) (views.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return views.ChannelProfile{}, apperr.Validation("username is missing",
			apperr.FieldError{Field: "username", Message: "username is missing"})
	}
	return s.views.ChannelProfile(ctx, &caller, username)
}

// WatchHistory lists the videos the caller watched.
func (s *UserService) WatchHistory(ctx context.Context, caller auth.Caller) ([]views.FeedVideo, error) {
	return s.views.WatchHistory(ctx, caller)
}
