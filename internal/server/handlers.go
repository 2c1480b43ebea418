package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jobsniper/internal/observability"
	"jobsniper/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createAnalyzeHandler wraps the full pipeline handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobsniper.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "analyze"),
		)

		report := s.Controller.Run(ctx, types.AnalysisRequest{
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
			TargetRole:     req.TargetRole,
		})

		if s.History != nil {
			if _, err := s.History.Save(ctx, report); err != nil {
				// History is best-effort; the analysis result still goes out
				s.Logger.LogError(err, "Failed to persist analysis report")
			}
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("response.degraded", report.Degraded),
			attribute.String("response.parse_provider", report.Profile.Provider),
		)

		writeJSONResponse(w, report)
	}
}

// createParseHandler wraps the resume parsing handler with observability
func (s *Server) createParseHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobsniper.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "parse"),
		)

		profile := s.Controller.Parser().Parse(ctx, req.ResumeText)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("response.degraded", profile.Degraded),
			attribute.String("response.provider", profile.Provider),
		)

		writeJSONResponse(w, profile)
	}
}

// createMatchHandler wraps the job matching handler with observability
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobsniper.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "match"),
		)

		profile := s.Controller.Parser().Parse(ctx, req.ResumeText)
		match := s.Controller.Matcher().Match(ctx, profile, req.JobDescription)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("response.degraded", match.Degraded),
			attribute.Int("response.match_score", int(match.MatchScore)),
		)

		writeJSONResponse(w, match)
	}
}

// createRecommendHandler wraps the skill recommendation handler with observability
func (s *Server) createRecommendHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobsniper.api")
		ctx, span := tracer.Start(ctx, "api.recommend")
		defer span.End()

		var req RecommendRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("request.target_role", req.TargetRole),
			attribute.String("operation", "recommend"),
		)

		profile := s.Controller.Parser().Parse(ctx, req.ResumeText)
		recs := s.Controller.Recommender().Recommend(ctx, profile, req.TargetRole)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("response.degraded", recs.Degraded),
			attribute.Int("response.skill_count", len(recs.RecommendedSkills)),
		)

		writeJSONResponse(w, recs)
	}
}

// healthHandler reports provider availability. The service itself stays
// healthy even with no provider configured because the demo fallback
// still serves every operation.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "jobsniper",
		"version": s.Version,
	}

	providers := map[string]bool{}
	anyAvailable := false
	if s.Router != nil {
		providers = s.Router.Health()
		for _, available := range providers {
			if available {
				anyAvailable = true
			}
		}
	}
	response["providers"] = providers
	response["demo_mode"] = !anyAvailable
	if !anyAvailable {
		response["status"] = "degraded"
	}

	response["history_enabled"] = s.History != nil
	response["email_configured"] = s.AppConfig.EmailAvailable()

	if s.CertReloader != nil {
		response["tls_auto_reload"] = map[string]any{
			"enabled":      true,
			"reload_count": s.CertReloader.ReloadCount(),
		}
	}

	writeJSONResponse(w, response)
}

// statsHandler provides usage counters and rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "jobsniper",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.Router != nil {
		response["usage"] = s.Router.Stats()
	}

	if s.History != nil {
		if count, err := s.History.Count(r.Context()); err == nil {
			response["stored_analyses"] = count
		}
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSONResponse(w, response)
}

// historyHandler returns recent stored analyses
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.History == nil {
		writeErrorResponse(w, "History disabled", "analysis history is not enabled on this server", http.StatusNotFound)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeErrorResponse(w, "Invalid limit", "limit must be an integer between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := s.History.Recent(r.Context(), limit)
	if err != nil {
		s.Logger.LogError(err, "Failed to read analysis history")
		writeErrorResponse(w, "Failed to read history", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				om.GetMetrics().RecordRateLimitHit(r.Context(), r.URL.Path)
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSONResponse writes a JSON response body
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
