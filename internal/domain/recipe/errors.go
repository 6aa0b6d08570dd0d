package recipe

import "errors"

// Domain errors for recipe generation and history records

var (
	// Entity validation errors
	ErrTitleRequired  = errors.New("recipe title is required")
	ErrNoIngredients  = errors.New("recipe must have at least one ingredient")
	ErrNoInstructions = errors.New("recipe must have at least one instruction")
	ErrEmptyTips      = errors.New("chef tips must contain at least one tip")

	// History record errors
	ErrRecipeRequired   = errors.New("history record requires a recipe")
	ErrRecordIDRequired = errors.New("history record identifier is required")
	ErrRecordNotFound   = errors.New("history record not found")
)
