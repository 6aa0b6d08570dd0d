package recipe

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RecipeTestSuite provides a test suite for the Recipe entity
type RecipeTestSuite struct {
	suite.Suite
}

// TestRecipeCreation tests recipe creation scenarios
func (suite *RecipeTestSuite) TestRecipeCreation() {
	suite.Run("ValidRecipe_ShouldCreateSuccessfully", func() {
		// Arrange
		title := "Chicken Rice Bowl"
		description := "A quick weeknight bowl"
		ingredients := []string{"2 chicken breasts", "1 cup rice", "soy sauce"}
		instructions := []string{"Cook the rice", "Sear the chicken", "Assemble the bowl"}

		// Act
		rec, err := NewRecipe(title, description, ingredients, instructions, "10 minutes", "25 minutes", "2")

		// Assert
		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), rec)

		assert.Equal(suite.T(), title, rec.Title())
		assert.Equal(suite.T(), description, rec.Description())
		assert.Equal(suite.T(), ingredients, rec.Ingredients())
		assert.Equal(suite.T(), instructions, rec.Instructions())
		assert.Equal(suite.T(), "10 minutes", rec.PrepTime())
		assert.Equal(suite.T(), "25 minutes", rec.CookTime())
		assert.Equal(suite.T(), "2", rec.Servings())
	})

	suite.Run("EmptyTitle_ShouldReturnError", func() {
		rec, err := NewRecipe("", "desc", []string{"rice"}, []string{"cook"}, "", "", "")

		assert.ErrorIs(suite.T(), err, ErrTitleRequired)
		assert.Nil(suite.T(), rec)
	})

	suite.Run("WhitespaceTitle_ShouldReturnError", func() {
		rec, err := NewRecipe("   ", "desc", []string{"rice"}, []string{"cook"}, "", "", "")

		assert.ErrorIs(suite.T(), err, ErrTitleRequired)
		assert.Nil(suite.T(), rec)
	})

	suite.Run("NoIngredients_ShouldReturnError", func() {
		rec, err := NewRecipe("Title", "", nil, []string{"cook"}, "", "", "")

		assert.ErrorIs(suite.T(), err, ErrNoIngredients)
		assert.Nil(suite.T(), rec)
	})

	suite.Run("BlankIngredientsOnly_ShouldReturnError", func() {
		rec, err := NewRecipe("Title", "", []string{"  ", ""}, []string{"cook"}, "", "", "")

		assert.ErrorIs(suite.T(), err, ErrNoIngredients)
		assert.Nil(suite.T(), rec)
	})

	suite.Run("NoInstructions_ShouldReturnError", func() {
		rec, err := NewRecipe("Title", "", []string{"rice"}, nil, "", "", "")

		assert.ErrorIs(suite.T(), err, ErrNoInstructions)
		assert.Nil(suite.T(), rec)
	})

	suite.Run("BlankEntries_ShouldBeFiltered", func() {
		rec, err := NewRecipe("Title", "", []string{" rice ", "", "beans"}, []string{"cook", "  "}, "", "", "")

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []string{"rice", "beans"}, rec.Ingredients())
		assert.Equal(suite.T(), []string{"cook"}, rec.Instructions())
	})
}

// TestRecipeImmutability verifies callers cannot mutate a recipe through
// returned slices
func (suite *RecipeTestSuite) TestRecipeImmutability() {
	rec, err := NewRecipe("Title", "", []string{"rice", "beans"}, []string{"cook"}, "", "", "")
	require.NoError(suite.T(), err)

	got := rec.Ingredients()
	got[0] = "mutated"

	assert.Equal(suite.T(), []string{"rice", "beans"}, rec.Ingredients())
}

// TestIngredientsLine verifies the comma-joined reconstruction used when a
// history record repopulates the ingredients input
func (suite *RecipeTestSuite) TestIngredientsLine() {
	rec, err := NewRecipe("Title", "", []string{"chicken", "rice", "soy sauce"}, []string{"cook"}, "", "", "")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "chicken, rice, soy sauce", rec.IngredientsLine())
}

// TestRecipeJSONRoundTrip verifies workspace snapshots restore recipes intact
func (suite *RecipeTestSuite) TestRecipeJSONRoundTrip() {
	suite.Run("ValidSnapshot_ShouldRestore", func() {
		rec, err := NewRecipe("Title", "desc", []string{"rice"}, []string{"cook"}, "5 min", "10 min", "4")
		require.NoError(suite.T(), err)

		data, err := json.Marshal(rec)
		require.NoError(suite.T(), err)

		var restored Recipe
		require.NoError(suite.T(), json.Unmarshal(data, &restored))

		assert.Equal(suite.T(), rec.Title(), restored.Title())
		assert.Equal(suite.T(), rec.Ingredients(), restored.Ingredients())
		assert.Equal(suite.T(), rec.Instructions(), restored.Instructions())
		assert.Equal(suite.T(), rec.Servings(), restored.Servings())
	})

	suite.Run("CorruptedSnapshot_ShouldBeRejected", func() {
		var restored Recipe
		err := json.Unmarshal([]byte(`{"title":"","ingredients":[],"instructions":[]}`), &restored)

		assert.ErrorIs(suite.T(), err, ErrTitleRequired)
	})
}

// SavedRecipeTestSuite provides a test suite for history records
type SavedRecipeTestSuite struct {
	suite.Suite

	recipe *Recipe
}

func (suite *SavedRecipeTestSuite) SetupTest() {
	rec, err := NewRecipe("Chicken Rice Bowl", "", []string{"chicken", "rice"}, []string{"cook"}, "", "", "")
	suite.Require().NoError(err)
	suite.recipe = rec
}

// TestIdentifierDerivation verifies the record id derives from the creation
// timestamp
func (suite *SavedRecipeTestSuite) TestIdentifierDerivation() {
	createdAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	record, err := NewSavedRecipe(suite.recipe, nil, createdAt)

	suite.Require().NoError(err)
	suite.Equal("1748781000000", record.ID())
	suite.Equal(createdAt, record.CreatedAt())
}

// TestTipsAreOptional verifies records save with or without tips
func (suite *SavedRecipeTestSuite) TestTipsAreOptional() {
	tips := &ChefTips{CookingTip: "Rest the chicken", BeveragePairing: "Dry riesling"}

	withTips, err := NewSavedRecipe(suite.recipe, tips, time.Now())
	suite.Require().NoError(err)
	suite.Equal(tips, withTips.Tips())

	withoutTips, err := NewSavedRecipe(suite.recipe, nil, time.Now())
	suite.Require().NoError(err)
	suite.Nil(withoutTips.Tips())
}

// TestRecipeRequired verifies a record cannot exist without a recipe
func (suite *SavedRecipeTestSuite) TestRecipeRequired() {
	record, err := NewSavedRecipe(nil, nil, time.Now())

	suite.ErrorIs(err, ErrRecipeRequired)
	suite.Nil(record)
}

// TestRestore verifies restoration keeps the original identifier
func (suite *SavedRecipeTestSuite) TestRestore() {
	createdAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	record, err := RestoreSavedRecipe("1748781000000", suite.recipe, nil, createdAt)

	suite.Require().NoError(err)
	suite.Equal("1748781000000", record.ID())

	_, err = RestoreSavedRecipe("", suite.recipe, nil, createdAt)
	suite.ErrorIs(err, ErrRecordIDRequired)
}

func TestRecipeTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeTestSuite))
}

func TestSavedRecipeTestSuite(t *testing.T) {
	suite.Run(t, new(SavedRecipeTestSuite))
}

func TestChefTipsValidation(t *testing.T) {
	t.Run("both empty is rejected", func(t *testing.T) {
		tips, err := NewChefTips("", "  ")
		assert.ErrorIs(t, err, ErrEmptyTips)
		assert.Nil(t, tips)
	})

	t.Run("single tip is enough", func(t *testing.T) {
		tips, err := NewChefTips("Salt the water", "")
		require.NoError(t, err)
		assert.Equal(t, "Salt the water", tips.CookingTip)
		assert.Empty(t, tips.BeveragePairing)
	})
}

func TestNormalizePreferences(t *testing.T) {
	got := NormalizePreferences([]string{" Vegan ", "vegan", "", "Gluten-Free", "keto"})

	assert.Equal(t, []string{"vegan", "gluten-free", "keto"}, got)
}
