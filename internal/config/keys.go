package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string       `json:"name"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Required bool         `json:"required"`
	Masked   string       `json:"masked,omitempty"` // e.g., "AIz...x9Q"
}

// CheckAPIKeys returns the status of the configured API keys. The Gemini key
// is required only when Gemini is the selected translator.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	gemini := checkKey("Gemini API Key", cfg.Speech.GeminiKey, EnvPrefix+"_SPEECH_GEMINI_KEY", "GEMINI_API_KEY")
	gemini.Required = cfg.Speech.Translator == "gemini"
	return []KeyStatus{gemini}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, e := range envVars {
		if os.Getenv(e) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
