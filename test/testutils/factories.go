// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/mealsmith/v2/internal/domain/recipe"
	"github.com/mealsmith/v2/internal/domain/session"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	title        string
	description  string
	ingredients  []string
	instructions []string
	prepTime     string
	cookTime     string
	servings     string
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &RecipeBuilder{
		title:       faker.Sentence(3),
		description: faker.Sentence(8),
		ingredients: []string{
			faker.Fruit(),
			faker.Fruit(),
			faker.Fruit(),
		},
		instructions: []string{
			"Prep all ingredients.",
			"Combine and cook until done.",
		},
		prepTime: "15 minutes",
		cookTime: "30 minutes",
		servings: "4 servings",
	}
}

// WithTitle sets the recipe title
func (rb *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	rb.title = title
	return rb
}

// WithDescription sets the recipe description
func (rb *RecipeBuilder) WithDescription(description string) *RecipeBuilder {
	rb.description = description
	return rb
}

// WithIngredients sets the recipe ingredients
func (rb *RecipeBuilder) WithIngredients(ingredients ...string) *RecipeBuilder {
	rb.ingredients = ingredients
	return rb
}

// WithInstructions sets the recipe instructions
func (rb *RecipeBuilder) WithInstructions(instructions ...string) *RecipeBuilder {
	rb.instructions = instructions
	return rb
}

// WithTimings sets the prep and cook time display strings
func (rb *RecipeBuilder) WithTimings(prepTime, cookTime string) *RecipeBuilder {
	rb.prepTime = prepTime
	rb.cookTime = cookTime
	return rb
}

// WithServings sets the servings display string
func (rb *RecipeBuilder) WithServings(servings string) *RecipeBuilder {
	rb.servings = servings
	return rb
}

// Build constructs the recipe with validation
func (rb *RecipeBuilder) Build() (*recipe.Recipe, error) {
	return recipe.NewRecipe(
		rb.title,
		rb.description,
		rb.ingredients,
		rb.instructions,
		rb.prepTime,
		rb.cookTime,
		rb.servings,
	)
}

// RecipeFactory methods for creating common recipe shapes

// CreateRecipe creates a recipe with randomized content
func (rf *RecipeFactory) CreateRecipe() (*recipe.Recipe, error) {
	ingredients := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		ingredients = append(ingredients, rf.faker.Fruit())
	}

	instructions := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		instructions = append(instructions, rf.faker.Sentence(6))
	}

	return NewRecipeBuilder().
		WithTitle(rf.faker.Sentence(3)).
		WithDescription(rf.faker.Sentence(10)).
		WithIngredients(ingredients...).
		WithInstructions(instructions...).
		WithTimings(
			fmt.Sprintf("%d minutes", rf.faker.IntRange(5, 30)),
			fmt.Sprintf("%d minutes", rf.faker.IntRange(10, 90)),
		).
		WithServings(fmt.Sprintf("%d servings", rf.faker.IntRange(1, 8))).
		Build()
}

// CreateTitledRecipe creates a recipe with a fixed title and random fill
func (rf *RecipeFactory) CreateTitledRecipe(title string) (*recipe.Recipe, error) {
	return NewRecipeBuilder().
		WithTitle(title).
		WithDescription(rf.faker.Sentence(10)).
		Build()
}

// CreateChefTips creates a chef tips value with randomized content
func (rf *RecipeFactory) CreateChefTips() (*recipe.ChefTips, error) {
	return recipe.NewChefTips(
		rf.faker.Sentence(8),
		"Pairs well with "+rf.faker.BeerName()+".",
	)
}

// SavedRecipeBuilder provides a fluent interface for building history records
type SavedRecipeBuilder struct {
	recipe    *recipe.Recipe
	tips      *recipe.ChefTips
	createdAt time.Time
}

// NewSavedRecipeBuilder creates a new history record builder. The zero
// builder produces a record around a freshly built random recipe.
func NewSavedRecipeBuilder() *SavedRecipeBuilder {
	return &SavedRecipeBuilder{
		createdAt: time.Now().Truncate(time.Millisecond),
	}
}

// WithRecipe sets the stored recipe
func (sb *SavedRecipeBuilder) WithRecipe(rec *recipe.Recipe) *SavedRecipeBuilder {
	sb.recipe = rec
	return sb
}

// WithTips sets the stored chef tips; nil models a failed tips generation
func (sb *SavedRecipeBuilder) WithTips(tips *recipe.ChefTips) *SavedRecipeBuilder {
	sb.tips = tips
	return sb
}

// WithCreatedAt sets the creation timestamp, which also fixes the record ID
func (sb *SavedRecipeBuilder) WithCreatedAt(createdAt time.Time) *SavedRecipeBuilder {
	sb.createdAt = createdAt
	return sb
}

// Build constructs the history record
func (sb *SavedRecipeBuilder) Build() (*recipe.SavedRecipe, error) {
	rec := sb.recipe
	if rec == nil {
		built, err := NewRecipeBuilder().Build()
		if err != nil {
			return nil, err
		}
		rec = built
	}
	return recipe.NewSavedRecipe(rec, sb.tips, sb.createdAt)
}

// CreateHistory creates n history records with distinct creation times,
// returned newest first to match repository list ordering
func (rf *RecipeFactory) CreateHistory(n int) ([]*recipe.SavedRecipe, error) {
	base := time.Now().Truncate(time.Millisecond).Add(-time.Duration(n) * time.Minute)

	records := make([]*recipe.SavedRecipe, 0, n)
	for i := n - 1; i >= 0; i-- {
		rec, err := rf.CreateRecipe()
		if err != nil {
			return nil, err
		}

		var tips *recipe.ChefTips
		// Alternate records without tips to cover the degraded path
		if i%2 == 0 {
			tips, err = rf.CreateChefTips()
			if err != nil {
				return nil, err
			}
		}

		record, err := NewSavedRecipeBuilder().
			WithRecipe(rec).
			WithTips(tips).
			WithCreatedAt(base.Add(time.Duration(i) * time.Minute)).
			Build()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// AccountFactory provides methods to create test accounts
type AccountFactory struct {
	faker *gofakeit.Faker
}

// NewAccountFactory creates a new account factory
func NewAccountFactory(seed int64) *AccountFactory {
	return &AccountFactory{
		faker: gofakeit.New(seed),
	}
}

// CreateAccount creates an account with a random username
func (af *AccountFactory) CreateAccount() (*session.Account, error) {
	return session.NewAccount(af.faker.Username())
}

// CreateNamedAccount creates an account with a fixed username
func (af *AccountFactory) CreateNamedAccount(username string) (*session.Account, error) {
	return session.NewAccount(username)
}

// TestDataSet provides a collection of related test data
type TestDataSet struct {
	Accounts  []*session.Account
	Histories map[string][]*recipe.SavedRecipe
}

// CreateTestDataSet creates accounts each owning a small history list,
// keyed by account ID
func CreateTestDataSet(accountCount, recordsPerAccount int) (*TestDataSet, error) {
	seed := time.Now().UnixNano()
	accountFactory := NewAccountFactory(seed)
	recipeFactory := NewRecipeFactory(seed)

	set := &TestDataSet{
		Accounts:  make([]*session.Account, 0, accountCount),
		Histories: make(map[string][]*recipe.SavedRecipe, accountCount),
	}

	for i := 0; i < accountCount; i++ {
		account, err := accountFactory.CreateAccount()
		if err != nil {
			return nil, fmt.Errorf("failed to create test account %d: %w", i, err)
		}

		history, err := recipeFactory.CreateHistory(recordsPerAccount)
		if err != nil {
			return nil, fmt.Errorf("failed to create history for account %d: %w", i, err)
		}

		set.Accounts = append(set.Accounts, account)
		set.Histories[account.ID().String()] = history
	}

	return set, nil
}

// Cleanup provides cleanup utilities for tests
type Cleanup struct {
	funcs []func()
}

// NewCleanup creates a new cleanup helper
func NewCleanup() *Cleanup {
	return &Cleanup{
		funcs: make([]func(), 0),
	}
}

// Add adds a cleanup function
func (c *Cleanup) Add(f func()) {
	c.funcs = append(c.funcs, f)
}

// Execute runs all cleanup functions in reverse order
func (c *Cleanup) Execute() {
	for i := len(c.funcs) - 1; i >= 0; i-- {
		c.funcs[i]()
	}
}
