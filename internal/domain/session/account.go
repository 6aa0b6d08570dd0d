// Package session contains the session domain: account identity and the
// per-session workspace that holds all application state for one client.
package session

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Account represents a login identity. Identity is username-only: there is
// no credential beyond the name itself, so logging in with a new username
// creates the account.
type Account struct {
	id        uuid.UUID
	username  string
	createdAt time.Time
}

// NewAccount creates a new account with a normalized username
func NewAccount(username string) (*Account, error) {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	return &Account{
		id:        uuid.New(),
		username:  normalized,
		createdAt: time.Now(),
	}, nil
}

// RestoreAccount reconstructs an account from persistent storage
func RestoreAccount(id uuid.UUID, username string, createdAt time.Time) (*Account, error) {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	return &Account{
		id:        id,
		username:  normalized,
		createdAt: createdAt,
	}, nil
}

// NormalizeUsername trims and lowercases a username so that "Alice" and
// "alice " resolve to the same account
func NormalizeUsername(username string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))

	if normalized == "" {
		return "", ErrUsernameRequired
	}

	if utf8.RuneCountInString(normalized) > maxUsernameLength {
		return "", ErrUsernameTooLong
	}

	return normalized, nil
}

const maxUsernameLength = 64

// ID returns the account's unique identifier
func (a *Account) ID() uuid.UUID {
	return a.id
}

// Username returns the normalized username
func (a *Account) Username() string {
	return a.username
}

// CreatedAt returns the account's creation time
func (a *Account) CreatedAt() time.Time {
	return a.createdAt
}
