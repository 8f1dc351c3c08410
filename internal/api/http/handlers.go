package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	alerts "aquaculture-cloud/internal/alerts/domain"
	masterdata "aquaculture-cloud/internal/masterdata/domain"
)

// RuleLister lists the alert rule table.
type RuleLister interface {
	List(ctx context.Context) ([]alerts.AlertRule, error)
}

// ParametersHandler serves GET /api/v1/parameters.
type ParametersHandler struct {
	params masterdata.ParameterRepository
}

// NewParametersHandler constructs a ParametersHandler.
func NewParametersHandler(params masterdata.ParameterRepository) *ParametersHandler {
	return &ParametersHandler{params: params}
}

// ServeHTTP lists parameter definitions.
func (h *ParametersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.params == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	defs, err := h.params.List(r.Context())
	if err != nil {
		http.Error(w, "list parameters error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, defs)
}

// RulesHandler serves GET /api/v1/alert-rules.
type RulesHandler struct {
	rules RuleLister
}

// NewRulesHandler constructs a RulesHandler.
func NewRulesHandler(rules RuleLister) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// ServeHTTP lists alert rules, active or not.
func (h *RulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.rules == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	rules, err := h.rules.List(r.Context())
	if err != nil {
		http.Error(w, "list rules error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rules)
}

// ClassifyHandler serves GET /api/v1/classify?parameter=&value=.
type ClassifyHandler struct {
	params masterdata.ParameterRepository
}

// NewClassifyHandler constructs a ClassifyHandler.
func NewClassifyHandler(params masterdata.ParameterRepository) *ClassifyHandler {
	return &ClassifyHandler{params: params}
}

type classifyResponse struct {
	Parameter string          `json:"parameter"`
	Value     float64         `json:"value"`
	Tier      masterdata.Tier `json:"tier"`
}

// ServeHTTP classifies a value against the parameter's tiers.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.params == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	parameter := r.URL.Query().Get("parameter")
	if parameter == "" {
		http.Error(w, "parameter is required", http.StatusBadRequest)
		return
	}
	value, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		http.Error(w, "value must be a number", http.StatusBadRequest)
		return
	}
	def, err := h.params.Get(r.Context(), parameter)
	if err != nil {
		if errors.Is(err, masterdata.ErrParameterNotFound) {
			http.Error(w, "unknown parameter", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup parameter error", http.StatusInternalServerError)
		return
	}
	tier, err := masterdata.Classify(value, *def)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, classifyResponse{Parameter: parameter, Value: value, Tier: tier})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
