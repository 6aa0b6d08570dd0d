package session

import "errors"

// Domain errors for accounts and workspaces

var (
	// Account validation errors
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must not exceed 64 characters")
	ErrAccountNotFound  = errors.New("account not found")

	// Workspace transition errors
	ErrEmptyIngredients   = errors.New("ingredients text must not be empty")
	ErrGenerationInFlight = errors.New("a generation is already in progress")
	ErrNotLoggedIn        = errors.New("no account is logged in")
	ErrRecipeMissing      = errors.New("a generated recipe is required")
	ErrRecordMissing      = errors.New("a history record is required")

	// Store errors
	ErrWorkspaceNotFound = errors.New("workspace not found")
)
