package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	alertapp "aquaculture-cloud/internal/alerts/application"
	alerts "aquaculture-cloud/internal/alerts/domain"
	alertinterfaces "aquaculture-cloud/internal/alerts/interfaces"
)

const (
	basePath   = "/api/v1/alerts"
	timeLayout = time.RFC3339
)

// Handler provides alert HTTP endpoints.
type Handler struct {
	service *alertapp.Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler constructs a handler.
func NewHandler(service *alertapp.Service, logger *zap.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("alerts handler: nil service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger, now: func() time.Time { return time.Now().UTC() }}, nil
}

// ServeHTTP handles /api/v1/alerts and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == basePath:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case path == basePath+"/stats":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStats(w, r)
	case path == basePath+"/export.xlsx" || path == basePath+"/export.pdf":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r, strings.TrimPrefix(path, basePath+"/export."))
	case strings.HasPrefix(path, basePath+"/"):
		h.handleAlert(w, r, strings.TrimPrefix(path, basePath+"/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.ListAlerts(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.ListAlerts(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	stats := alerts.NewStats()
	for _, alert := range list {
		stats.Add(alert)
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		body, err = alertinterfaces.BuildAlertReportXLSX(list, stats, h.now())
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		body, err = alertinterfaces.BuildAlertReportPDF(list, stats, h.now())
		contentType = "application/pdf"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("alert export failed", zap.String("format", format), zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=alerts."+format)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleAlert(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" || len(parts) > 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		alert, err := h.service.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, alert)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var opts []alertapp.MutationOption
	if strict, _ := strconv.ParseBool(r.URL.Query().Get("strict")); strict {
		opts = append(opts, alertapp.Strict())
	}

	var (
		alert *alerts.Alert
		err   error
	)
	switch parts[1] {
	case "resolve":
		alert, err = h.service.Resolve(r.Context(), id, opts...)
	case "unresolve":
		alert, err = h.service.Unresolve(r.Context(), id, opts...)
	case "toggle":
		alert, err = h.service.Toggle(r.Context(), id, opts...)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if alert == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func parseFilter(r *http.Request) (alerts.Filter, error) {
	q := r.URL.Query()
	filter := alerts.Filter{
		Search: q.Get("q"),
		LineID: q.Get("line_id"),
		TankID: q.Get("tank_id"),
	}
	if value := q.Get("unresolved"); value != "" {
		only, err := strconv.ParseBool(value)
		if err != nil {
			return filter, errors.New("unresolved must be a boolean")
		}
		filter.OnlyUnresolved = only
	}
	var err error
	if filter.Start, err = parseOptionalTime(r, "from"); err != nil {
		return filter, err
	}
	if filter.End, err = parseOptionalTime(r, "to"); err != nil {
		return filter, err
	}
	return filter, nil
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

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, alerts.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
