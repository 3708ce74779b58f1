package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"google.golang.org/genai"

	"remy/internal/config"
)

type geminiClient struct {
	client      *genai.Client
	model       string
	imageModel  string
	speechModel string
	voice       string
}

func newGeminiClient(ctx context.Context, cfg *config.Config) (*geminiClient, error) {
	// retries live in the transport so callers see one attempt.
	rc := retryablehttp.NewClient()
	rc.Logger = nil

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.AI.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: rc.StandardClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &geminiClient{
		client:      client,
		model:       cfg.AI.Model,
		imageModel:  cfg.AI.ImageModel,
		speechModel: cfg.AI.SpeechModel,
		voice:       cfg.AI.Voice,
	}, nil
}

func (g *geminiClient) RecognizeIngredients(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(recognizePrompt),
		}, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ingredientNamesSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("recognizing ingredients: %w", err)
	}
	text, err := singleText(res)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		return nil, fmt.Errorf("unmarshalling ingredient names: %w", err)
	}
	return names, nil
}

func (g *geminiClient) GenerateRecipe(ctx context.Context, query string, pantry []string) (*Recipe, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(recipeUserPrompt(query, pantry), genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(recipeSystemPrompt, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    recipeSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generating recipe: %w", err)
	}
	text, err := singleText(res)
	if err != nil {
		return nil, err
	}
	var recipe Recipe
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		return nil, fmt.Errorf("unmarshalling recipe: %w", err)
	}
	return &recipe, nil
}

func (g *geminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.imageModel, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return "", fmt.Errorf("generating image: %w", err)
	}
	return imageDataURI(res)
}

func (g *geminiClient) EditImage(ctx context.Context, imageURI string, instruction string) (string, error) {
	mimeType, data, err := decodeDataURI(imageURI)
	if err != nil {
		return "", err
	}
	res, err := g.client.Models.GenerateContent(ctx, g.imageModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return "", fmt.Errorf("editing image: %w", err)
	}
	return imageDataURI(res)
}

func (g *geminiClient) LookupStores(ctx context.Context, city string) ([]StoreLocation, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(storeUserPrompt(city), genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(storeSystemPrompt, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    storeListSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("looking up stores: %w", err)
	}
	text, err := singleText(res)
	if err != nil {
		return nil, err
	}
	var stores []StoreLocation
	if err := json.Unmarshal([]byte(text), &stores); err != nil {
		return nil, fmt.Errorf("unmarshalling stores: %w", err)
	}
	return stores, nil
}

func (g *geminiClient) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.speechModel, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: g.voice,
				},
			},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("synthesizing speech: %w", err)
	}
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && strings.HasPrefix(p.InlineData.MIMEType, "audio/") {
				return p.InlineData.Data, p.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", fmt.Errorf("no audio in speech response")
}

func singleText(res *genai.GenerateContentResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 || res.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("unexpected response from generate ai: %v", res)
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}

func imageDataURI(res *genai.GenerateContentResponse) (string, error) {
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && strings.HasPrefix(p.InlineData.MIMEType, "image/") {
				return "data:" + p.InlineData.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.InlineData.Data), nil
			}
		}
	}
	return "", fmt.Errorf("no image in response")
}

// decodeDataURI splits a data:<mime>;base64,<payload> URI back into bytes.
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	mimeType, _ := strings.CutSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URI payload: %w", err)
	}
	return mimeType, data, nil
}
