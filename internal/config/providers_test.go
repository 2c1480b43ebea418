package config

import (
	"strings"
	"testing"
)

func TestGeminiKeyValid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{
			name: "valid key",
			key:  "AIza" + strings.Repeat("x", 35),
			want: true,
		},
		{
			name: "exactly 30 chars with prefix",
			key:  "AIza" + strings.Repeat("y", 26),
			want: true,
		},
		{
			name: "empty",
			key:  "",
			want: false,
		},
		{
			name: "whitespace only",
			key:  "   ",
			want: false,
		},
		{
			name: "placeholder",
			key:  "your_actual_gemini_api_key_here",
			want: false,
		},
		{
			name: "too short",
			key:  "AIzaShort",
			want: false,
		},
		{
			name: "missing prefix",
			key:  strings.Repeat("z", 40),
			want: false,
		},
		{
			name: "surrounding whitespace trimmed",
			key:  "  AIza" + strings.Repeat("x", 35) + "  ",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GeminiKeyValid(tt.key); got != tt.want {
				t.Errorf("GeminiKeyValid(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMistralKeyValid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{
			name: "valid key",
			key:  strings.Repeat("m", 32),
			want: true,
		},
		{
			name: "exactly 20 chars",
			key:  strings.Repeat("m", 20),
			want: true,
		},
		{
			name: "too short",
			key:  strings.Repeat("m", 19),
			want: false,
		},
		{
			name: "empty",
			key:  "",
			want: false,
		},
		{
			name: "placeholder",
			key:  "your_actual_mistral_api_key_here",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MistralKeyValid(tt.key); got != tt.want {
				t.Errorf("MistralKeyValid(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfigProviderAvailability(t *testing.T) {
	cfg := &Config{}
	cfg.AI.Gemini.APIKey = "AIza" + strings.Repeat("x", 35)
	cfg.AI.Mistral.APIKey = ""

	if !cfg.GeminiAvailable() {
		t.Error("expected Gemini to be available with a valid key")
	}
	if cfg.MistralAvailable() {
		t.Error("expected Mistral to be unavailable without a key")
	}
}
