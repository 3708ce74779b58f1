package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"remy/internal/config"
)

const (
	defaultOpenAIModel       = "gpt-4o"
	defaultOpenAIImageModel  = "gpt-image-1"
	defaultOpenAISpeechModel = "gpt-4o-mini-tts"
	defaultOpenAIVoice       = "alloy"
)

type openAIClient struct {
	client      openai.Client
	model       string
	imageModel  string
	speechModel string
	voice       string
}

func newOpenAIClient(cfg *config.Config) (*openAIClient, error) {
	rc := retryablehttp.NewClient()
	rc.Logger = nil

	return &openAIClient{
		client:      openai.NewClient(option.WithAPIKey(cfg.AI.APIKey), option.WithHTTPClient(rc.StandardClient())),
		model:       openAIModelOr(cfg.AI.Model, defaultOpenAIModel),
		imageModel:  openAIModelOr(cfg.AI.ImageModel, defaultOpenAIImageModel),
		speechModel: openAIModelOr(cfg.AI.SpeechModel, defaultOpenAISpeechModel),
		voice:       openAIVoiceOr(cfg.AI.Voice),
	}, nil
}

// the config defaults are gemini model names, so swap those for the openai
// equivalents unless the operator set one explicitly.
func openAIModelOr(model, fallback string) string {
	if model == "" || strings.HasPrefix(model, "gemini") {
		return fallback
	}
	return model
}

func openAIVoiceOr(voice string) string {
	switch strings.ToLower(voice) {
	case "alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer":
		return strings.ToLower(voice)
	default:
		return defaultOpenAIVoice
	}
}

func (o *openAIClient) RecognizeIngredients(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	dataURI := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURI}),
				openai.TextContentPart(recognizePrompt + ` Respond as a JSON object {"ingredients": [...]}.`),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("recognizing ingredients: %w", err)
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("no choices in recognition response")
	}
	var out struct {
		Ingredients []string `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(res.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("unmarshalling ingredient names: %w", err)
	}
	return out.Ingredients, nil
}

func (o *openAIClient) GenerateRecipe(ctx context.Context, query string, pantry []string) (*Recipe, error) {
	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(recipeSystemPrompt),
			openai.UserMessage(recipeUserPrompt(query, pantry)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "recipe",
					Strict: openai.Bool(true),
					Schema: recipeSchemaMap(),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating recipe: %w", err)
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("no choices in recipe response")
	}
	var recipe Recipe
	if err := json.Unmarshal([]byte(res.Choices[0].Message.Content), &recipe); err != nil {
		return nil, fmt.Errorf("unmarshalling recipe: %w", err)
	}
	return &recipe, nil
}

func (o *openAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	res, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  openai.ImageModel(o.imageModel),
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("generating image: %w", err)
	}
	if len(res.Data) == 0 || res.Data[0].B64JSON == "" {
		return "", fmt.Errorf("no image in response")
	}
	return "data:image/png;base64," + res.Data[0].B64JSON, nil
}

func (o *openAIClient) EditImage(ctx context.Context, imageURI string, instruction string) (string, error) {
	mimeType, data, err := decodeDataURI(imageURI)
	if err != nil {
		return "", err
	}
	res, err := o.client.Images.Edit(ctx, openai.ImageEditParams{
		Model:  openai.ImageModel(o.imageModel),
		Image:  openai.ImageEditParamsImageUnion{OfFile: openai.File(bytes.NewReader(data), "image.png", mimeType)},
		Prompt: instruction,
	})
	if err != nil {
		return "", fmt.Errorf("editing image: %w", err)
	}
	if len(res.Data) == 0 || res.Data[0].B64JSON == "" {
		return "", fmt.Errorf("no image in edit response")
	}
	return "data:image/png;base64," + res.Data[0].B64JSON, nil
}

func (o *openAIClient) LookupStores(ctx context.Context, city string) ([]StoreLocation, error) {
	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(storeSystemPrompt + ` Respond as a JSON object {"stores": [{"name", "address", "rating", "open", "maps_uri"}]}.`),
			openai.UserMessage(storeUserPrompt(city)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("looking up stores: %w", err)
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("no choices in store response")
	}
	var out struct {
		Stores []StoreLocation `json:"stores"`
	}
	if err := json.Unmarshal([]byte(res.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("unmarshalling stores: %w", err)
	}
	return out.Stores, nil
}

func (o *openAIClient) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	res, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModel(o.speechModel),
		Voice: openai.AudioSpeechNewParamsVoiceUnion{OfString: openai.String(o.voice)},
		Input: text,
	})
	if err != nil {
		return nil, "", fmt.Errorf("synthesizing speech: %w", err)
	}
	defer res.Body.Close()
	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading speech response: %w", err)
	}
	mimeType := res.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return audio, mimeType, nil
}
