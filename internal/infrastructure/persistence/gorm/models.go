// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountModel represents the GORM model for accounts
type AccountModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Recipes []SavedRecipeModel `gorm:"foreignKey:AccountID"`
}

// SavedRecipeModel represents the GORM model for saved recipes.
// The primary key is composite: record IDs derive from save timestamps, so
// they are only unique within a single account.
type SavedRecipeModel struct {
	ID        string    `gorm:"type:varchar(32);primaryKey"`
	AccountID uuid.UUID `gorm:"type:char(36);primaryKey;index"`

	// Recipe content
	Title        string      `gorm:"type:varchar(255);not null"`
	Description  string      `gorm:"type:text"`
	Ingredients  StringSlice `gorm:"type:json"`
	Instructions StringSlice `gorm:"type:json"`
	PrepTime     string      `gorm:"type:varchar(64)"`
	CookTime     string      `gorm:"type:varchar(64)"`
	Servings     string      `gorm:"type:varchar(64)"`

	// Chef tips (empty when tip generation failed for this save)
	CookingTip      string `gorm:"type:text"`
	BeveragePairing string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`

	// Relationships
	Account AccountModel `gorm:"foreignKey:AccountID"`
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// BeforeCreate hook for AccountModel
func (a *AccountModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (AccountModel) TableName() string {
	return "accounts"
}

func (SavedRecipeModel) TableName() string {
	return "saved_recipes"
}
