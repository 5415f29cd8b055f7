package password

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"go-videotube/internal/model"
)

const (
	DefaultCost = 12
	// MaxBytes is bcrypt's input limit, counted in bytes rather than runes.
	MaxBytes = 72
)

// Bcrypt hashes and verifies passwords. CompareHashAndPassword is constant
// time with respect to the candidate password.
type Bcrypt struct {
	cost  int
	once  sync.Once
	dummy string
}

func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(plaintext) > MaxBytes {
		return "", model.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

func (b *Bcrypt) Verify(plaintext string, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Dummy returns a valid digest for an unknown account so that login spends
// the same bcrypt work whether or not the identity exists.
func (b *Bcrypt) Dummy() string {
	b.once.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-account"), b.cost)
		if err == nil {
			b.dummy = string(hash)
		}
	})
	return b.dummy
}
