package config

import (
	"os"
)

type Config struct {
	AI      AIConfig      `json:"ai"`
	Mail    MailConfig    `json:"mail"`
	Storage StorageConfig `json:"storage"`
}

type AIConfig struct {
	Provider    string `json:"provider"` // "gemini" or "openai"
	APIKey      string `json:"api_key"`
	Model       string `json:"model"`
	ImageModel  string `json:"image_model"`
	SpeechModel string `json:"speech_model"`
	Voice       string `json:"voice"`
}

type MailConfig struct {
	APIKey      string `json:"api_key"`
	FromAddress string `json:"from_address"`
}

type StorageConfig struct {
	Dir string `json:"dir"` // file cache directory when no blob account is configured
}

func Load() (*Config, error) {
	config := &Config{
		AI: AIConfig{
			Provider:    getEnvOrDefault("AI_PROVIDER", "gemini"),
			APIKey:      os.Getenv("AI_API_KEY"),
			Model:       getEnvOrDefault("AI_MODEL", "gemini-2.5-flash"),
			ImageModel:  getEnvOrDefault("AI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			SpeechModel: getEnvOrDefault("AI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
			Voice:       getEnvOrDefault("AI_VOICE", "Leda"),
		},
		Mail: MailConfig{
			APIKey:      os.Getenv("SENDGRID_API_KEY"),
			FromAddress: getEnvOrDefault("MAIL_FROM", "chef@remy.cooking"),
		},
		Storage: StorageConfig{
			Dir: getEnvOrDefault("REMY_DATA_DIR", "data"),
		},
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
