package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	telemetryapp "aquaculture-cloud/internal/telemetry/application"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

const (
	readingsPath = "/api/v1/readings"
	latestPath   = "/api/v1/readings/latest"
	statusPath   = "/api/v1/status"
	timeLayout   = time.RFC3339
	maxBodyBytes = 4 << 20
)

// Handler serves reading ingestion, range queries and live status.
type Handler struct {
	ingest *telemetryapp.IngestService
	status *telemetryapp.StatusService
	repo   telemetry.ReadingRepository
	logger *zap.Logger
}

// NewHandler constructs a handler.
func NewHandler(ingest *telemetryapp.IngestService, status *telemetryapp.StatusService, repo telemetry.ReadingRepository, logger *zap.Logger) (*Handler, error) {
	if ingest == nil || status == nil || repo == nil {
		return nil, errors.New("telemetry handler: nil dependency")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ingest: ingest, status: status, repo: repo, logger: logger}, nil
}

// ServeHTTP handles /api/v1/readings, /api/v1/readings/latest and /api/v1/status.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case readingsPath:
		switch r.Method {
		case http.MethodPost:
			h.handleIngest(w, r)
		case http.MethodGet:
			h.handleQuery(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case latestPath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleLatest(w, r)
	case statusPath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStatus(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var readings []telemetry.Reading
	if err := json.Unmarshal(body, &readings); err != nil {
		h.logger.Warn("telemetry ingest: decode error", zap.Error(err))
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), readings)
	if err != nil {
		h.logger.Error("telemetry ingest: publish error", zap.Error(err))
		http.Error(w, "alert generation error", http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if len(result.Stored) == 0 && len(result.Rejected) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	variant, err := telemetry.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filter := telemetry.Filter{
		LineID: r.URL.Query().Get("line_id"),
		TankID: r.URL.Query().Get("tank_id"),
	}
	if filter.Start, err = parseOptionalTime(r, "from"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.End, err = parseOptionalTime(r, "to"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	readings, err := h.repo.QueryByRange(r.Context(), variant, filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

type latestResponse struct {
	Found   bool               `json:"found"`
	Reading *telemetry.Reading `json:"reading"`
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	variant, key, err := parseVariantKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reading, ok, err := h.repo.LatestFor(r.Context(), variant, key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := latestResponse{Found: ok}
	if ok {
		resp.Reading = &reading
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Found  bool                     `json:"found"`
	Status *telemetryapp.LiveStatus `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	variant, key, err := parseVariantKey(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, ok, err := h.status.LiveStatus(r.Context(), variant, key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Found: ok, Status: status})
}

func parseVariantKey(r *http.Request) (telemetry.Variant, telemetry.Key, error) {
	q := r.URL.Query()
	variant, err := telemetry.ParseVariant(q.Get("variant"))
	if err != nil {
		return "", telemetry.Key{}, err
	}
	key := telemetry.Key{LineID: q.Get("line_id"), TankID: q.Get("tank_id")}
	if key.LineID == "" {
		return "", telemetry.Key{}, errors.New("line_id is required")
	}
	return variant, key, nil
}

func parseOptionalTime(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC3339")
	}
	return parsed.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
