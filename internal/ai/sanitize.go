package ai

import (
	"encoding/json"
)

// The collaborator's JSON is loosely validated and persisted copies may be
// compacted, so the recipe decodes field by field: anything missing or of the
// wrong shape falls back instead of failing the whole document.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.ID = pick(fields, "id", "")
	r.Name = pick(fields, "name", "")
	r.Description = pick(fields, "description", "")
	r.HaveIngredients = pick[[]Ingredient](fields, "have_ingredients", nil)
	r.BuyIngredients = pick[[]Ingredient](fields, "buy_ingredients", nil)
	r.EstimatedCost = pick(fields, "estimated_cost", 0.0)
	r.Steps = pick[[]string](fields, "steps", nil)
	r.Hacks = pick[[]SubstitutionHack](fields, "hacks", nil)
	r.PrepTime = pick(fields, "prep_time", "")
	r.TotalTime = pick(fields, "total_time", "")
	r.Servings = pick(fields, "servings", 0)
	r.Difficulty = pick(fields, "difficulty", "")
	r.SafetyScore = pick[any](fields, "safety_score", nil)
	r.SafetyFactors = pick[[]string](fields, "safety_factors", nil)
	r.Tips = pick[[]string](fields, "tips", nil)
	r.Sustainability = pick(fields, "sustainability", Sustainability{})
	r.ImageDataURI = pick(fields, "image_data_uri", "")
	r.SaveType = pick(fields, "save_type", "")
	r.SavedDate = pick(fields, "saved_date", "")
	return nil
}

func pick[T any](fields map[string]json.RawMessage, key string, fallback T) T {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

// WithDefaults returns a copy safe to render: every list present, every scalar
// with a fallback. Pure; applied before each detail view.
func (r Recipe) WithDefaults() Recipe {
	if r.Name == "" {
		r.Name = "Untitled Recipe"
	}
	switch r.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyChef:
	default:
		r.Difficulty = DifficultyMedium
	}
	if r.SafetyScore == nil {
		r.SafetyScore = 0
	}
	if r.HaveIngredients == nil {
		r.HaveIngredients = []Ingredient{}
	}
	if r.BuyIngredients == nil {
		r.BuyIngredients = []Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.Hacks == nil {
		r.Hacks = []SubstitutionHack{}
	}
	if r.SafetyFactors == nil {
		r.SafetyFactors = []string{}
	}
	if r.Tips == nil {
		r.Tips = []string{}
	}
	return r
}
