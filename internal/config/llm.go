package config

import "os"

// LLMConfig holds the settings for the external text-generation provider
// used to produce the room's icebreaker question. The provider speaks the
// OpenAI-compatible chat-completions protocol.
type LLMConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultLLMConfig returns the LLM configuration from the environment.
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		APIKey:    os.Getenv("LLM_API_KEY"),
		BaseURL:   getEnvOrDefault("LLM_BASE_URL", "https://api.deepseek.com/v1"),
		Model:     getEnvOrDefault("LLM_MODEL", "deepseek-chat"),
		TimeoutMS: 10000, // generation must never block a room operation for long
	}
}

// IsEnabled returns true if the provider is configured. When disabled the
// game falls back to a canned question.
func (c *LLMConfig) IsEnabled() bool {
	return c.APIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
