// Package server exposes the projection engine and the property store over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/rental-projection/internal/config"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/loans"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// Store is the persistence the property routes need.
type Store interface {
	CreateProperty(ctx context.Context, name, city string, mode projection.Mode) (*store.Property, error)
	GetProperty(ctx context.Context, id int64) (*store.Property, error)
	ListProperties(ctx context.Context) ([]store.Property, error)
	GetProjection(ctx context.Context, propertyID int64) (*store.Projection, error)
	UpsertProjection(ctx context.Context, propertyID int64, in projection.Input, out *projection.Output) error
	ListSummaries(ctx context.Context) ([]store.Summary, error)
}

// Options tune the handler. Zero values select the defaults.
type Options struct {
	MaxBodySize int64
	RateLimit   RateLimitConfig
	Version     string
}

type handler struct {
	logger      *zap.Logger
	engine      *projection.CachedEngine
	store       Store
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler serving the projection API. A nil
// store disables the property routes, which then answer 503.
func NewHandler(logger *zap.Logger, engine *projection.CachedEngine, st Store, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	perSecond, burst := opts.RateLimit.PerSecond, opts.RateLimit.Burst
	if perSecond <= 0 {
		perSecond = constants.DefaultRateLimitPerSecond
	}
	if burst <= 0 {
		burst = constants.DefaultRateLimitBurst
	}

	h := &handler{logger: logger, engine: engine, store: st, maxBodySize: maxBodySize, version: trimmedVersion}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(h.rateLimit(rate.NewLimiter(rate.Limit(perSecond), burst)))
	r.Use(h.limitBody)

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Post("/projection", h.handleProjection)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/export", h.handleExport)

		r.Route("/properties", func(r chi.Router) {
			r.Use(h.requireStore)
			r.Get("/", h.handleListProperties)
			r.Post("/", h.handleCreateProperty)
			r.Get("/{id}/financial/{mode}", h.handleGetFinancial)
			r.Post("/{id}/financial/{mode}", h.handleSaveFinancial)
		})
		r.With(h.requireStore).Get("/projections", h.handleListSummaries)
	})

	return r
}

type projectionResponse struct {
	Name     string             `json:"name,omitempty"`
	Output   *projection.Output `json:"output"`
	Warnings []string           `json:"warnings,omitempty"`
	Duration string             `json:"duration"`
}

type scheduleResponse struct {
	Name           string          `json:"name,omitempty"`
	MonthlyPayment float64         `json:"monthlyPayment"`
	TotalInterest  float64         `json:"totalInterest"`
	Schedule       []loans.Payment `json:"schedule"`
}

type createPropertyRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
	Mode string `json:"mode"`
}

type exportRequest struct {
	Output     config.OutputConfig     `json:"output"`
	Policy     config.PolicyConfig     `json:"policy"`
	Properties []config.PropertyConfig `json:"properties"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"
	start := time.Now()

	property, ok := h.decodeProperty(w, r, op)
	if !ok {
		return
	}
	in, ok := h.propertyInput(w, property, "", op)
	if !ok {
		return
	}

	out, err := h.engine.Compute(r.Context(), in)
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.String("mode", string(in.Mode)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, projectionResponse{
		Name:     property.Name,
		Output:   out,
		Warnings: propertyWarnings(property),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	property, ok := h.decodeProperty(w, r, op)
	if !ok {
		return
	}
	in, ok := h.propertyInput(w, property, "", op)
	if !ok {
		return
	}

	out, err := h.engine.Engine().ComputeWithSchedule(in)
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}

	schedule := out.Schedule
	if schedule == nil {
		schedule = []loans.Payment{}
	}
	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Name:           property.Name,
		MonthlyPayment: out.MonthlyPayment,
		TotalInterest:  out.TotalInterestOverTerm,
		Schedule:       schedule,
	})
}

// handleExport returns the canonical YAML form of a submitted portfolio:
// amounts are parsed, modes resolved and terms rounded.
func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	var req exportRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if _, err := projection.ParsePolicy(req.Policy.InterestDeduction, req.Policy.TouristTax); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	portfolio := config.Configuration{
		Output:     req.Output,
		Policy:     req.Policy,
		Properties: make([]config.PropertyConfig, 0, len(req.Properties)),
	}
	for _, property := range req.Properties {
		in, err := property.ToInput()
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		canonical := config.FromInput(property.Name, property.City, in)
		canonical.Active = property.Active
		portfolio.Properties = append(portfolio.Properties, canonical)
	}

	yamlBytes, err := yaml.Marshal(portfolio)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListProperties"

	properties, err := h.store.ListProperties(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if properties == nil {
		properties = []store.Property{}
	}
	h.writeJSON(w, http.StatusOK, properties)
}

func (h *handler) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListSummaries"

	summaries, err := h.store.ListSummaries(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateProperty"

	var req createPropertyRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	mode := projection.LongTermRental
	if strings.TrimSpace(req.Mode) != "" {
		parsed, err := projection.ParseMode(req.Mode)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		mode = parsed
	}

	property, err := h.store.CreateProperty(r.Context(), req.Name, req.City, mode)
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, property)
}

func (h *handler) handleGetFinancial(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetFinancial"

	id, mode, ok := h.financialParams(w, r, op)
	if !ok {
		return
	}
	if _, err := h.store.GetProperty(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "property not found", op)
		return
	}

	stored, err := h.store.GetProjection(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && stored.Mode != mode) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, stored)
}

func (h *handler) handleSaveFinancial(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveFinancial"

	id, mode, ok := h.financialParams(w, r, op)
	if !ok {
		return
	}
	property, ok := h.decodeProperty(w, r, op)
	if !ok {
		return
	}
	in, ok := h.propertyInput(w, property, mode, op)
	if !ok {
		return
	}

	if _, err := h.store.GetProperty(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "property not found", op)
		return
	}

	out, err := h.engine.Compute(r.Context(), in)
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}
	if err := h.store.UpsertProjection(r.Context(), id, in, out); err != nil {
		h.respondStoreError(w, err, "property not found", op)
		return
	}

	stored, err := h.store.GetProjection(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, "projection not found", op)
		return
	}

	h.logger.Info("projection saved",
		zap.String("op", op),
		zap.Int64("propertyId", id),
		zap.String("mode", string(mode)),
	)
	h.writeJSON(w, http.StatusOK, stored)
}

func (h *handler) financialParams(w http.ResponseWriter, r *http.Request, op string) (int64, projection.Mode, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "invalid id parameter", op)
		return 0, "", false
	}
	mode, err := projection.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return 0, "", false
	}
	return id, mode, true
}

func (h *handler) decodeProperty(w http.ResponseWriter, r *http.Request, op string) (config.PropertyConfig, bool) {
	var property config.PropertyConfig
	if !h.decodeJSON(w, r, &property, op) {
		return config.PropertyConfig{}, false
	}
	return property, true
}

// propertyInput converts the request body to an engine input. A mode taken
// from the route overrides the one in the body.
func (h *handler) propertyInput(w http.ResponseWriter, property config.PropertyConfig, mode projection.Mode, op string) (projection.Input, bool) {
	if mode != "" {
		property.Mode = string(mode)
	}
	in, err := property.ToInput()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return projection.Input{}, false
	}
	if missing := missingFields(in); len(missing) > 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), op)
		return projection.Input{}, false
	}
	return in, true
}

// missingFields lists the fields a mode cannot be projected without.
func missingFields(in projection.Input) []string {
	var missing []string
	if in.Acquisition.AgencyPrice <= 0 {
		missing = append(missing, "acquisition.agencyPrice")
	}
	switch in.Mode {
	case projection.LongTermRental:
		if in.FlatRent == nil {
			missing = append(missing, "flatRent")
		}
	case projection.ShortTermRental:
		if in.Occupancy == nil {
			missing = append(missing, "occupancy")
			break
		}
		if in.Occupancy.NightlyPrice <= 0 {
			missing = append(missing, "occupancy.nightlyPrice")
		}
		if in.Occupancy.TargetNightsPerYear <= 0 {
			missing = append(missing, "occupancy.targetNightsPerYear")
		}
	}
	return missing
}

func propertyWarnings(property config.PropertyConfig) []string {
	property.Active = nil
	portfolio := config.Configuration{Properties: []config.PropertyConfig{property}}
	return portfolio.ValidateConfiguration()
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondComputeError(w http.ResponseWriter, err error, op string) {
	status := http.StatusInternalServerError
	if projection.IsValidation(err) {
		status = http.StatusBadRequest
	}
	h.respondErrorWithOp(w, status, err.Error(), op)
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, notFound string, op string) {
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, notFound, op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
