// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealsmith/v2/internal/domain/session"
	"github.com/mealsmith/v2/internal/ports/outbound"
)

// AccountRepository implements the account repository interface using GORM
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) outbound.AccountRepository {
	return &AccountRepository{db: db}
}

// FindOrCreate resolves a username to an account, creating the account on
// first login. Two clients logging in with the same new username at once
// race on the unique index; the loser re-reads the winner's row.
func (r *AccountRepository) FindOrCreate(ctx context.Context, username string) (*session.Account, error) {
	normalized, err := session.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	account, err := r.FindByUsername(ctx, normalized)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, session.ErrAccountNotFound) {
		return nil, err
	}

	fresh, err := session.NewAccount(normalized)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Create(AccountToModel(fresh))
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return r.FindByUsername(ctx, normalized)
		}
		return nil, result.Error
	}

	return fresh, nil
}

// FindByUsername finds an account by normalized username
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*session.Account, error) {
	normalized, err := session.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	var model AccountModel

	result := r.db.WithContext(ctx).First(&model, "username = ?", normalized)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, session.ErrAccountNotFound
		}
		return nil, result.Error
	}

	return ModelToAccount(&model)
}

// FindByID finds an account by ID
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Account, error) {
	var model AccountModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, session.ErrAccountNotFound
		}
		return nil, result.Error
	}

	return ModelToAccount(&model)
}

// isDuplicateKey reports whether err is a unique constraint violation from
// either supported driver
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
