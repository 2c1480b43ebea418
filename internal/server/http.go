package server

import (
	"time"

	"jobsniper/internal/agents"
	"jobsniper/internal/ai"
	"jobsniper/internal/config"
	jobsniperErrors "jobsniper/internal/errors"
	"jobsniper/internal/history"
)

// AnalyzeRequest is the request body for the analyze endpoint
type AnalyzeRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription,omitempty"`
	TargetRole     string `json:"targetRole,omitempty"`
}

// ParseRequest is the request body for the parse endpoint
type ParseRequest struct {
	ResumeText string `json:"resumeText"`
}

// MatchRequest is the request body for the match endpoint
type MatchRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// RecommendRequest is the request body for the recommend endpoint
type RecommendRequest struct {
	ResumeText string `json:"resumeText"`
	TargetRole string `json:"targetRole,omitempty"`
}

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate hot reload
	CertReloader *CertReloader

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// AI pipeline, set during Start
	Router     *ai.Router
	Controller *agents.Controller

	// Analysis history, nil when disabled
	History *history.Store

	// Logger
	Logger *jobsniperErrors.Logger
}

// NewServer creates a new Server instance from application configuration
func NewServer(appCfg *config.Config, version string, logger *jobsniperErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	rateLimit := appCfg.Server.RateLimit
	var rateLimiter *RateLimiter
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			rateLimit.RequestsPerMin,
			rateLimit.Window,
			rateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      appCfg.Server.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.App.MaxFileSize,
		RateLimit:      &rateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
