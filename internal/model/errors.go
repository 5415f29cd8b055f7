package model

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrPasswordTooLong marks a password beyond what bcrypt can hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

	// ErrRefreshTokenMismatch is returned by a conditional rotation that found
	// a different (or no) token on file.
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
)
