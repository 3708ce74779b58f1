package ai

// Wire types for the generation collaborator. The response schema is the only
// protocol this app depends on; everything here is shaped for defensive
// decoding because the service may return partial or oddly typed data.

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyChef   = "Chef"
)

const (
	RiskNone = "None"
	RiskLow  = "Low"
	RiskHigh = "High"
)

const (
	SaveTypeHack = "HACK_IT"
	SaveTypeShop = "SHOP_IT"
)

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"` // free text, no unit parsing on our side
}

// SubstitutionHack is one suggested replacement for a missing ingredient.
// Immutable once generated.
type SubstitutionHack struct {
	Missing       string `json:"missing"`
	Replacement   string `json:"replacement"`
	Quantity      string `json:"quantity"`
	Effectiveness int    `json:"effectiveness" jsonschema:"minimum=0,maximum=100"`
	SafetyRisk    string `json:"safety_risk" jsonschema:"enum=None,enum=Low,enum=High"`
	Rationale     string `json:"rationale"`
}

type Sustainability struct {
	SavingsDh  float64 `json:"savings_dh"`
	CO2Kg      float64 `json:"co2_kg"`
	WasteGrams float64 `json:"waste_grams"`
}

type Recipe struct {
	ID              string             `json:"id,omitempty" jsonschema:"-"` // stamped locally, never by the service
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	HaveIngredients []Ingredient       `json:"have_ingredients"`
	BuyIngredients  []Ingredient       `json:"buy_ingredients"`
	EstimatedCost   float64            `json:"estimated_cost"`
	Steps           []string           `json:"steps"`
	Hacks           []SubstitutionHack `json:"hacks"`
	PrepTime        string             `json:"prep_time"`
	TotalTime       string             `json:"total_time"`
	Servings        int                `json:"servings"`
	Difficulty      string             `json:"difficulty" jsonschema:"enum=Easy,enum=Medium,enum=Chef"`
	SafetyScore     any                `json:"safety_score"` // number, numeric string, or "72%"; see NormalizeScore
	SafetyFactors   []string           `json:"safety_factors"`
	Tips            []string           `json:"tips"`
	Sustainability  Sustainability     `json:"sustainability"`
	ImageDataURI    string             `json:"image_data_uri,omitempty" jsonschema:"-"`
	SaveType        string             `json:"save_type,omitempty" jsonschema:"-"`
	SavedDate       string             `json:"saved_date,omitempty" jsonschema:"-"`
}

// HackRecommended is the service-independent flag: every hack must clear the
// effectiveness bar and none may be high risk. True on an empty hack list
// (array.every semantics, kept for compatibility).
func (r *Recipe) HackRecommended() bool {
	for _, h := range r.Hacks {
		if h.Effectiveness < 70 || h.SafetyRisk == RiskHigh {
			return false
		}
	}
	return true
}

// RecommendHackPath is the display tie-break: mark the hack path as
// chef-recommended only for a safe score and a short hack list. Computed
// separately from HackRecommended; the two can disagree.
func (r *Recipe) RecommendHackPath() bool {
	return NormalizeScore(r.SafetyScore) >= 75 && len(r.Hacks) <= 3
}

type StoreLocation struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating,omitempty"`
	Open    *bool   `json:"open,omitempty"`
	MapsURI string  `json:"maps_uri"`
}
