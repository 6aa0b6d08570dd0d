package recipe

import "strings"

// Value Objects - Immutable objects that describe aspects of the domain

// ChefTips carries the two supplementary tips generated alongside a recipe.
// Tips generation is best-effort: a Recipe can exist without tips, so
// absence is modeled as a nil *ChefTips, never as a zero value.
type ChefTips struct {
	CookingTip      string `json:"cookingTip"`
	BeveragePairing string `json:"beveragePairing"`
}

// NewChefTips creates chef tips with validation
func NewChefTips(cookingTip, beveragePairing string) (*ChefTips, error) {
	tips := &ChefTips{
		CookingTip:      strings.TrimSpace(cookingTip),
		BeveragePairing: strings.TrimSpace(beveragePairing),
	}

	if err := tips.Validate(); err != nil {
		return nil, err
	}

	return tips, nil
}

// Validate validates the tips
func (t ChefTips) Validate() error {
	if t.CookingTip == "" && t.BeveragePairing == "" {
		return ErrEmptyTips
	}
	return nil
}

// DietaryPreference is a tag constraining recipe generation
type DietaryPreference string

// Supported dietary preference tags
const (
	PreferenceVegetarian DietaryPreference = "vegetarian"
	PreferenceVegan      DietaryPreference = "vegan"
	PreferenceGlutenFree DietaryPreference = "gluten-free"
	PreferenceDairyFree  DietaryPreference = "dairy-free"
	PreferenceKeto       DietaryPreference = "keto"
	PreferenceLowCarb    DietaryPreference = "low-carb"
	PreferencePaleo      DietaryPreference = "paleo"
	PreferenceHalal      DietaryPreference = "halal"
	PreferenceKosher     DietaryPreference = "kosher"
)

// NormalizePreferences trims, lowercases, and deduplicates preference tags,
// preserving first-seen order. Unknown tags are kept: the AI provider treats
// them as free-text constraints.
func NormalizePreferences(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := strings.ToLower(strings.TrimSpace(tag))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
