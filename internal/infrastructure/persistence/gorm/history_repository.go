package gorm

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/ports/outbound"
)

// HistoryRepository implements the saved-recipe repository interface using GORM
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) outbound.HistoryRepository {
	return &HistoryRepository{db: db}
}

// List returns every saved recipe for the account, newest first
func (r *HistoryRepository) List(ctx context.Context, accountID uuid.UUID) ([]*recipe.SavedRecipe, error) {
	var models []SavedRecipeModel

	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	records := make([]*recipe.SavedRecipe, 0, len(models))
	for i := range models {
		record, err := ModelToSavedRecipe(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// Save inserts a history record and returns the account's full history,
// newest first. Saving the same record twice is an error: record IDs are
// stable per save, not per recipe.
func (r *HistoryRepository) Save(ctx context.Context, accountID uuid.UUID, record *recipe.SavedRecipe) ([]*recipe.SavedRecipe, error) {
	if record == nil {
		return nil, recipe.ErrRecipeRequired
	}

	result := r.db.WithContext(ctx).Create(SavedRecipeToModel(accountID, record))
	if result.Error != nil {
		return nil, result.Error
	}

	return r.List(ctx, accountID)
}

// Delete removes a history record and returns the account's remaining
// history, newest first. Deleting an unknown record returns
// recipe.ErrRecordNotFound.
func (r *HistoryRepository) Delete(ctx context.Context, accountID uuid.UUID, recordID string) ([]*recipe.SavedRecipe, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", recordID, accountID).
		Delete(&SavedRecipeModel{})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, recipe.ErrRecordNotFound
	}

	return r.List(ctx, accountID)
}
