package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		AI: AIConfig{
			Priority: []string{"gemini", "mistral"},
			Timeout:  60 * time.Second,
		},
		Server: ServerConfig{
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid without any provider keys",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "empty priority",
			mutate:  func(c *Config) { c.AI.Priority = nil },
			wantErr: true,
		},
		{
			name:    "unknown provider in priority",
			mutate:  func(c *Config) { c.AI.Priority = []string{"gemini", "openai"} },
			wantErr: true,
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: true,
		},
		{
			name:    "bad default format",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.App.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "bad TLS mode",
			mutate:  func(c *Config) { c.Server.TLS.Mode = "tls13" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmailAvailable(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"configured", "someone@example.com", "app-password", true},
		{"missing password", "someone@example.com", "", false},
		{"missing email", "", "app-password", false},
		{"placeholder email", "your_gmail@gmail.com", "app-password", false},
		{"placeholder password", "someone@example.com", "your_app_password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Email.SenderEmail = tt.email
			cfg.Email.SenderPassword = tt.password
			if got := cfg.EmailAvailable(); got != tt.want {
				t.Errorf("EmailAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}
