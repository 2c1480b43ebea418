package config

import "strings"

// Placeholder values shipped in example env files. A key equal to one
// of these is treated as absent.
var placeholderKeys = map[string]struct{}{
	"your_actual_gemini_api_key_here":  {},
	"your_actual_mistral_api_key_here": {},
	"changeme":                         {},
}

// GeminiKeyValid reports whether the key is syntactically usable:
// non-placeholder, at least 30 characters, "AIza" prefix.
func GeminiKeyValid(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if _, ok := placeholderKeys[key]; ok {
		return false
	}
	return len(key) >= 30 && strings.HasPrefix(key, "AIza")
}

// MistralKeyValid reports whether the key is syntactically usable:
// non-placeholder, at least 20 characters.
func MistralKeyValid(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if _, ok := placeholderKeys[key]; ok {
		return false
	}
	return len(key) >= 20
}

// GeminiAvailable reports whether the Gemini provider is configured
func (c *Config) GeminiAvailable() bool {
	return GeminiKeyValid(c.AI.Gemini.APIKey)
}

// MistralAvailable reports whether the Mistral provider is configured
func (c *Config) MistralAvailable() bool {
	return MistralKeyValid(c.AI.Mistral.APIKey)
}
