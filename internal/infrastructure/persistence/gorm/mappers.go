// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/google/uuid"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
)

// AccountToModel converts a domain account to a GORM model
func AccountToModel(a *session.Account) *AccountModel {
	return &AccountModel{
		ID:        a.ID(),
		Username:  a.Username(),
		CreatedAt: a.CreatedAt(),
	}
}

// ModelToAccount converts a GORM model to a domain account
func ModelToAccount(model *AccountModel) (*session.Account, error) {
	return session.RestoreAccount(model.ID, model.Username, model.CreatedAt)
}

// SavedRecipeToModel converts a history record to a GORM model
func SavedRecipeToModel(accountID uuid.UUID, record *recipe.SavedRecipe) *SavedRecipeModel {
	rec := record.Recipe()

	model := &SavedRecipeModel{
		ID:           record.ID(),
		AccountID:    accountID,
		Title:        rec.Title(),
		Description:  rec.Description(),
		Ingredients:  rec.Ingredients(),
		Instructions: rec.Instructions(),
		PrepTime:     rec.PrepTime(),
		CookTime:     rec.CookTime(),
		Servings:     rec.Servings(),
		CreatedAt:    record.CreatedAt(),
	}

	if tips := record.Tips(); tips != nil {
		model.CookingTip = tips.CookingTip
		model.BeveragePairing = tips.BeveragePairing
	}

	return model
}

// ModelToSavedRecipe converts a GORM model to a history record
func ModelToSavedRecipe(model *SavedRecipeModel) (*recipe.SavedRecipe, error) {
	rec, err := recipe.NewRecipe(
		model.Title,
		model.Description,
		model.Ingredients,
		model.Instructions,
		model.PrepTime,
		model.CookTime,
		model.Servings,
	)
	if err != nil {
		return nil, err
	}

	var tips *recipe.ChefTips
	if model.CookingTip != "" || model.BeveragePairing != "" {
		tips, err = recipe.NewChefTips(model.CookingTip, model.BeveragePairing)
		if err != nil {
			return nil, err
		}
	}

	return recipe.RestoreSavedRecipe(model.ID, rec, tips, model.CreatedAt)
}
