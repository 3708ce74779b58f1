package ai

import "google.golang.org/genai"

var ingredientSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"name":     {Type: "string"},
		"quantity": {Type: "string"},
	},
	Required: []string{"name", "quantity"},
}

var recipeSchema = &genai.Schema{
	Type:        "object",
	Description: "A recipe built around the user's pantry, with substitution hacks for missing ingredients.",
	Required: []string{
		"name", "description", "have_ingredients", "buy_ingredients", "estimated_cost",
		"steps", "hacks", "prep_time", "total_time", "servings", "difficulty",
		"safety_score", "safety_factors", "tips", "sustainability",
	},
	Properties: map[string]*genai.Schema{
		"name":             {Type: "string"},
		"description":      {Type: "string"},
		"have_ingredients": {Type: "array", Items: ingredientSchema},
		"buy_ingredients":  {Type: "array", Items: ingredientSchema},
		"estimated_cost": {
			Type:        "number",
			Description: "Estimated total cost of the missing ingredients.",
		},
		"steps": {Type: "array", Items: &genai.Schema{Type: "string"}},
		"hacks": {
			Type: "array",
			Items: &genai.Schema{
				Type: "object",
				Properties: map[string]*genai.Schema{
					"missing":       {Type: "string"},
					"replacement":   {Type: "string"},
					"quantity":      {Type: "string"},
					"effectiveness": {Type: "integer", Description: "0-100"},
					"safety_risk":   {Type: "string", Enum: []string{"None", "Low", "High"}},
					"rationale":     {Type: "string"},
				},
				Required: []string{"missing", "replacement", "quantity", "effectiveness", "safety_risk", "rationale"},
			},
		},
		"prep_time":  {Type: "string"},
		"total_time": {Type: "string"},
		"servings":   {Type: "integer"},
		"difficulty": {Type: "string", Enum: []string{"Easy", "Medium", "Chef"}},
		"safety_score": {
			Type:        "integer",
			Description: "How safe the substituted dish is, 0-100.",
		},
		"safety_factors": {Type: "array", Items: &genai.Schema{Type: "string"}},
		"tips":           {Type: "array", Items: &genai.Schema{Type: "string"}},
		"sustainability": {
			Type: "object",
			Properties: map[string]*genai.Schema{
				"savings_dh":  {Type: "number"},
				"co2_kg":      {Type: "number"},
				"waste_grams": {Type: "number"},
			},
			Required: []string{"savings_dh", "co2_kg", "waste_grams"},
		},
	},
}

var ingredientNamesSchema = &genai.Schema{
	Type:  "array",
	Items: &genai.Schema{Type: "string"},
}

var storeListSchema = &genai.Schema{
	Type: "array",
	Items: &genai.Schema{
		Type: "object",
		Properties: map[string]*genai.Schema{
			"name":     {Type: "string"},
			"address":  {Type: "string"},
			"rating":   {Type: "number"},
			"open":     {Type: "boolean"},
			"maps_uri": {Type: "string"},
		},
		Required: []string{"name", "address", "maps_uri"},
	},
}
