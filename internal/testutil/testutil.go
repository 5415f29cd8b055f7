// Package testutil holds in-memory stand-ins shared by service, handler and
// router tests.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-videotube/internal/model"
)

// Clock is a settable time source safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// UserStore mirrors the semantics of the Postgres user repository,
// including the conditional refresh token rotation.
type UserStore struct {
	mu    sync.Mutex
	users map[string]model.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUserStore(users ...model.User) *UserStore {
	s := &UserStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	key := strings.ToLower(strings.TrimSpace(username))
	for _, u := range s.users {
		if u.Username == key {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *UserStore) FindByUsernameOrEmail(_ context.Context, username string, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	var byEmail *model.User
	for _, u := range s.users {
		if username != "" && u.Username == username {
			return u, nil
		}
		if email != "" && u.Email == email && byEmail == nil {
			match := u
			byEmail = &match
		}
	}
	if byEmail != nil {
		return *byEmail, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *UserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return model.ErrUserAlreadyExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *UserStore) UpdateRefreshToken(_ context.Context, userID string, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.RefreshToken = cloneString(token)
	s.users[userID] = u
	return nil
}

func (s *UserStore) RotateRefreshToken(_ context.Context, userID string, presented string, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != presented {
		return model.ErrRefreshTokenMismatch
	}
	u.RefreshToken = &next
	s.users[userID] = u
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.RefreshToken = nil
	s.users[userID] = u
	return nil
}

// Get returns a copy of the stored record.
func (s *UserStore) Get(userID string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	return u, ok
}

// Uploader records uploads and hands back deterministic URLs.
type Uploader struct {
	mu       sync.Mutex
	Uploaded []string
	// Fail makes uploads of the listed paths return an error.
	Fail map[string]error
}

func (u *Uploader) Upload(_ context.Context, localPath string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err, ok := u.Fail[localPath]; ok {
		return "", err
	}
	u.Uploaded = append(u.Uploaded, localPath)
	name := localPath[strings.LastIndex(localPath, "/")+1:]
	return "https://cdn.test/" + name, nil
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
