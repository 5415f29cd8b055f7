package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-videotube/internal/event"
	"go-videotube/internal/metrics"
	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error
	RotateRefreshToken(ctx context.Context, userID string, presented string, next string) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, digest string) bool
	Dummy() string
}

type tokenIssuer interface {
	Issue(userID string) (model.TokenPair, error)
}

type tokenVerifier interface {
	Verify(raw string) (string, error)
}

type imageUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type stagedFiles interface {
	Remove(path string) error
}

// RegisterInput is a validated registration form plus the staged paths of
// its uploaded images.
type RegisterInput struct {
	model.RegisterRequest
	AvatarPath     string
	CoverImagePath string
}

type AuthService struct {
	users    userStore
	hasher   passwordHasher
	issuer   tokenIssuer
	refresh  tokenVerifier
	uploader imageUploader
	staging  stagedFiles
	bus      event.Bus
	now      func() time.Time
}

type AuthDeps struct {
	Users    userStore
	Hasher   passwordHasher
	Issuer   tokenIssuer
	Refresh  tokenVerifier
	Uploader imageUploader
	Staging  stagedFiles
	Bus      event.Bus
	Now      func() time.Time
}

func NewAuthService(deps AuthDeps) *AuthService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    deps.Users,
		hasher:   deps.Hasher,
		issuer:   deps.Issuer,
		refresh:  deps.Refresh,
		uploader: deps.Uploader,
		staging:  deps.Staging,
		bus:      deps.Bus,
		now:      now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, actor model.AuditActor) (model.SafeUser, error) {
	defer s.discard(in.AvatarPath, in.CoverImagePath)

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	required := []struct{ field, value string }{
		{"fullName", fullName},
		{"email", email},
		{"username", username},
		{"password", in.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.SafeUser{}, apierror.ValidationFailed("all fields are required", r.field)
		}
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		s.publish(event.TypeUserRegistered, actor, username, "username or email already taken")
		return model.SafeUser{}, apierror.Conflict("user with email or username already exists")
	case !errors.Is(err, model.ErrUserNotFound):
		return model.SafeUser{}, apierror.Unavailable(err)
	}

	if in.AvatarPath == "" {
		return model.SafeUser{}, apierror.ValidationFailed("avatar file is required", "avatar")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.SafeUser{}, hashError(err, "password")
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil {
		return model.SafeUser{}, apierror.UploadFailed("avatar upload failed", err)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.uploader.Upload(ctx, in.CoverImagePath)
		if err != nil {
			slog.Warn("cover image upload failed", "username", username, "error", err)
			coverURL = ""
		}
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.SafeUser{}, apierror.Conflict("user with email or username already exists")
		}
		return model.SafeUser{}, apierror.Unavailable(err)
	}

	actor.UserID = user.ID
	s.publish(event.TypeUserRegistered, actor, username, "")
	return user.Safe(), nil
}

// Login answers unknown identities and wrong passwords identically, and
// spends a bcrypt comparison in both cases.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, actor model.AuditActor) (model.Session, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" && email == "" {
		return model.Session{}, apierror.ValidationFailed("username or email is required", "username")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return model.Session{}, apierror.Unavailable(err)
	}

	found := err == nil
	digest := user.PasswordHash
	if !found {
		digest = s.hasher.Dummy()
	}

	if !s.hasher.Verify(req.Password, digest) || !found {
		metrics.RecordAuth("login", "invalid_credentials")
		s.publish(event.TypeLogin, actor, req.Identifier(), "invalid credentials")
		return model.Session{}, apierror.InvalidCredentials()
	}

	pair, err := s.issuer.Issue(user.ID)
	if err != nil {
		return model.Session{}, apierror.Unavailable(err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return model.Session{}, apierror.Unavailable(err)
	}

	metrics.RecordAuth("login", "success")
	actor.UserID = user.ID
	s.publish(event.TypeLogin, actor, user.Username, "")
	return model.Session{User: user.Safe(), Tokens: pair}, nil
}

// Refresh exchanges a live refresh token for a new pair. The stored token
// is replaced with a conditional update so that of several concurrent
// calls presenting the same token at most one succeeds.
func (s *AuthService) Refresh(ctx context.Context, presented string, actor model.AuditActor) (model.TokenPair, error) {
	if strings.TrimSpace(presented) == "" {
		return model.TokenPair{}, apierror.Unauthorized("unauthorized request")
	}

	userID, err := s.refresh.Verify(presented)
	if err != nil {
		metrics.RecordAuth("refresh", "invalid")
		s.publish(event.TypeRefresh, actor, "", err.Error())
		return model.TokenPair{}, apierror.InvalidRefreshToken().WithReason(err.Error())
	}
	actor.UserID = userID

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		metrics.RecordAuth("refresh", "unknown_identity")
		s.publish(event.TypeRefresh, actor, "", "unknown identity")
		return model.TokenPair{}, apierror.UnknownIdentity()
	}
	if err != nil {
		return model.TokenPair{}, apierror.Unavailable(err)
	}

	if !user.HasRefreshToken() || subtle.ConstantTimeCompare([]byte(presented), []byte(*user.RefreshToken)) != 1 {
		return model.TokenPair{}, s.reused(actor, user.Username)
	}

	pair, err := s.issuer.Issue(user.ID)
	if err != nil {
		return model.TokenPair{}, apierror.Unavailable(err)
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, model.ErrRefreshTokenMismatch) {
			return model.TokenPair{}, s.reused(actor, user.Username)
		}
		return model.TokenPair{}, apierror.Unavailable(err)
	}

	metrics.RecordAuth("refresh", "success")
	s.publish(event.TypeRefresh, actor, user.Username, "")
	return pair, nil
}

// Logout revokes the stored refresh token. Repeating it is harmless.
func (s *AuthService) Logout(ctx context.Context, userID string, actor model.AuditActor) error {
	err := s.users.UpdateRefreshToken(ctx, userID, nil)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return apierror.Unavailable(err)
	}

	metrics.RecordAuth("logout", "success")
	actor.UserID = userID
	s.publish(event.TypeLogout, actor, "", "")
	return nil
}

// ChangePassword also revokes the refresh token, so every session has to
// log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest, actor model.AuditActor) error {
	actor.UserID = userID

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.UnknownIdentity()
	}
	if err != nil {
		return apierror.Unavailable(err)
	}

	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		s.publish(event.TypePasswordChanged, actor, user.Username, "invalid old password")
		return apierror.New(apierror.CodeInvalidCredentials, "invalid old password", "oldPassword", http.StatusBadRequest)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return hashError(err, "newPassword")
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.UnknownIdentity()
		}
		return apierror.Unavailable(err)
	}

	s.publish(event.TypePasswordChanged, actor, user.Username, "")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.SafeUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.SafeUser{}, apierror.UnknownIdentity()
	}
	if err != nil {
		return model.SafeUser{}, apierror.Unavailable(err)
	}
	return user.Safe(), nil
}

func hashError(err error, field string) error {
	if errors.Is(err, model.ErrPasswordTooLong) {
		return apierror.ValidationFailed("password must be at most 72 bytes", field)
	}
	return apierror.Unavailable(err)
}

func (s *AuthService) reused(actor model.AuditActor, username string) error {
	metrics.RecordAuth("refresh", "reused")
	slog.Warn("refresh token reuse detected", "user_id", actor.UserID, "ip", actor.IP)
	s.publish(event.TypeRefresh, actor, username, "refresh token reused")
	return apierror.RefreshTokenReused()
}

func (s *AuthService) publish(typ event.Type, actor model.AuditActor, resource string, failure string) {
	if s.bus == nil {
		return
	}

	status := event.StatusSuccess
	if failure != "" {
		status = event.StatusFailure
	}

	s.bus.Publish(event.Event{
		Type:      typ,
		Timestamp: s.now().UTC(),
		ActorID:   actor.UserID,
		ActorIP:   actor.IP,
		Status:    status,
		Resource:  resource,
		Error:     failure,
	})
}

func (s *AuthService) discard(paths ...string) {
	if s.staging == nil {
		return
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.staging.Remove(path); err != nil {
			slog.Warn("failed to remove staged upload", "path", path, "error", err)
		}
	}
}
