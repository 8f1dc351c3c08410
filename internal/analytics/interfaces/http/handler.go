package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	analyticsapp "aquaculture-cloud/internal/analytics/application"
	"aquaculture-cloud/internal/analytics/domain/series"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

const timeLayout = time.RFC3339

// TimeSeriesHandler serves GET /api/v1/timeseries.
type TimeSeriesHandler struct {
	service *analyticsapp.TimeSeriesService
}

// NewTimeSeriesHandler constructs a handler.
func NewTimeSeriesHandler(service *analyticsapp.TimeSeriesService) (*TimeSeriesHandler, error) {
	if service == nil {
		return nil, errors.New("timeseries handler: nil service")
	}
	return &TimeSeriesHandler{service: service}, nil
}

type timeSeriesResponse struct {
	Variant   telemetry.Variant `json:"variant"`
	Parameter string            `json:"parameter"`
	Interval  series.Interval   `json:"interval"`
	Timezone  string            `json:"timezone"`
	Points    []series.Point    `json:"points"`
}

// ServeHTTP handles the query.
func (h *TimeSeriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	variant, err := telemetry.ParseVariant(q.Get("variant"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	interval, err := series.ParseInterval(q.Get("interval"))
	if err != nil {
		http.Error(w, "interval must be raw, hour, day, week or month", http.StatusBadRequest)
		return
	}
	parameter := q.Get("parameter")
	if parameter == "" {
		http.Error(w, "parameter is required", http.StatusBadRequest)
		return
	}
	from, err := parseOptionalTime(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseOptionalTime(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, err := h.service.TimeSeries(r.Context(), analyticsapp.Options{
		Variant:     variant,
		ParameterID: parameter,
		Start:       from,
		End:         to,
		LineID:      q.Get("line_id"),
		TankID:      q.Get("tank_id"),
		Interval:    interval,
	})
	if err != nil {
		if errors.Is(err, analyticsapp.ErrUnknownParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "query timeseries error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(timeSeriesResponse{
		Variant:   variant,
		Parameter: parameter,
		Interval:  interval,
		Timezone:  h.service.Location().String(),
		Points:    points,
	})
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
