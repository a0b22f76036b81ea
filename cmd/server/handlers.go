package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/liamcoop/sentest/internal/logger"
	"github.com/liamcoop/sentest/qr"
	"github.com/liamcoop/sentest/registration"
	"github.com/liamcoop/sentest/scenario"
)

// maxBodyBytes caps request bodies; the largest legitimate payload is a registration form
const maxBodyBytes = 1 << 16

type pinger interface {
	Ping(ctx context.Context) error
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Store:        s.cfg.StoreDriver,
		AuditEntries: s.issued.Len(),
	}

	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			logger.ErrorHttp5xx()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// Start test handler: issues a new scenario without its answer
func (s *Server) handleStartTest(w http.ResponseWriter, r *http.Request) {
	sc := s.generator.Generate()
	s.issued.Put(sc)
	s.generated.Add(1)

	logger.Debug("Scenario issued",
		"scenario_id", sc.ID,
		"test_sensitivity", sc.TestSensitivity,
		"base_pbo", sc.BasePBO,
	)

	respondJSON(w, http.StatusOK, sc.Public())
}

// Validate handler: scores a guess against the scenario values echoed by the client
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing required fields", err)
		return
	}
	if !req.complete() {
		respondError(w, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	basePBO := float64(*req.BasePBO)
	pct := float64(*req.InternalPctChange)
	guess := float64(*req.UserPBO)

	result, err := scenario.Validate(basePBO, pct, guess)
	if errors.Is(err, scenario.ErrInvalidInput) {
		respondError(w, http.StatusBadRequest, "Invalid scenario values", err)
		return
	}
	if err != nil {
		logger.Error("Validation failed", "scenario_id", req.ScenarioID, "error", err)
		respondError(w, http.StatusInternalServerError, "Validation failed", err)
		return
	}

	s.validated.Add(1)
	if result.Result == scenario.Correct {
		s.correct.Add(1)
	}

	s.auditPayload(req.ScenarioID, basePBO, pct)

	if req.RegistrationID != "" {
		if err := s.store.RecordResult(r.Context(), req.RegistrationID, result.Result == scenario.Correct); err != nil {
			logger.Warn("Failed to record quiz result",
				"registration_id", req.RegistrationID,
				"scenario_id", req.ScenarioID,
				"error", err,
			)
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// auditPayload logs when the echoed scenario values differ from what was issued
func (s *Server) auditPayload(id string, basePBO, pct float64) {
	issued, ok := s.issued.Get(id)
	if !ok {
		return
	}
	if diverged := scenario.Audit(issued, basePBO, pct); len(diverged) > 0 {
		s.auditFailed.Add(1)
		logger.Warn("Validate payload differs from issued scenario",
			"scenario_id", id,
			"fields", strings.Join(diverged, ","),
		)
	}
}

// Register handler
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := req.input()
	if failures := s.rules.Check(in); len(failures) > 0 {
		logger.WarnHttp4xx(http.StatusBadRequest)
		respondJSON(w, http.StatusBadRequest, RegisterErrorResponse{
			Error:  failures[0].Message,
			Fields: failures,
		})
		return
	}

	reg := registration.New(in)
	if err := s.store.Add(r.Context(), reg); err != nil {
		logger.Error("Failed to save registration", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save registration", nil)
		return
	}
	s.registered.Add(1)

	respondJSON(w, http.StatusOK, RegisterResponse{Success: true, ID: reg.ID})
}

// QR handler: PNG linking to the quiz page
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	png, err := qr.Encode(s.testURL(r), qr.Options{Size: qr.DefaultSize})
	if err != nil {
		logger.Error("Failed to generate QR code", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate QR code", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// testURL resolves the public quiz page from the Origin header, PUBLIC_URL or the local default
func (s *Server) testURL(r *http.Request) string {
	base := r.Header.Get("Origin")
	if base == "" {
		base = s.cfg.PublicURL
	}
	if base == "" {
		base = defaultPublicBase
	}
	return strings.TrimRight(base, "/") + "/test"
}

// Routes handler
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	seen := map[string]bool{}
	walk := func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		seen[strings.TrimSuffix(route, "/")] = true
		return nil
	}
	if err := chi.Walk(s.router, walk); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list routes", err)
		return
	}

	routes := make([]string, 0, len(seen)+1)
	for route := range seen {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	routes = append(routes, "/test")

	respondJSON(w, http.StatusOK, RoutesResponse{Routes: routes})
}

// Metrics handler
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := logger.Counters()
	metrics["scenarios_generated_total"] = s.generated.Load()
	metrics["validations_total"] = s.validated.Load()
	metrics["validations_correct_total"] = s.correct.Load()
	metrics["registrations_total"] = s.registered.Load()
	metrics["audit_mismatches_total"] = s.auditFailed.Load()
	metrics["audit_entries"] = int64(s.issued.Len())

	respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found", nil)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// Helper functions
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	switch {
	case status >= 500:
		logger.ErrorHttp5xx()
	case status >= 400:
		logger.WarnHttp4xx(status)
	}

	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}
