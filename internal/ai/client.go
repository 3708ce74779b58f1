package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"remy/internal/config"
)

// Client is the narrow contract this app consumes from the generation
// collaborator. Every call is a single request/response that may fail or come
// back partially empty; no retries happen at this layer.
type Client interface {
	// RecognizeIngredients names the ingredients visible in a pantry photo.
	RecognizeIngredients(ctx context.Context, image []byte, mimeType string) ([]string, error)
	// GenerateRecipe produces a structured recipe for a meal request given the
	// current pantry. The result carries no id and no image.
	GenerateRecipe(ctx context.Context, query string, pantry []string) (*Recipe, error)
	// GenerateImage returns an illustration for a prompt as a data URI.
	GenerateImage(ctx context.Context, prompt string) (string, error)
	// EditImage applies an instruction to an existing data-URI image.
	EditImage(ctx context.Context, imageDataURI string, instruction string) (string, error)
	// LookupStores lists grocery stores near a city. Transient, never persisted.
	LookupStores(ctx context.Context, city string) ([]StoreLocation, error)
	// Synthesize turns text into audio. Returns the bytes and their mime type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// New selects the provider from config.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	switch strings.ToLower(cfg.AI.Provider) {
	case "", "gemini":
		return newGeminiClient(ctx, cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}

// recipeSchemaMap reflects the recipe wire schema for providers that take a
// raw JSON schema. Fields tagged jsonschema:"-" stay local.
func recipeSchemaMap() map[string]any {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(&Recipe{})
	schemaJSON, _ := json.Marshal(schema)

	var m map[string]any
	_ = json.Unmarshal(schemaJSON, &m)
	return m
}
