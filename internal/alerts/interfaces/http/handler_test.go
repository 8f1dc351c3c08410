package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	alertapp "aquaculture-cloud/internal/alerts/application"
	alerts "aquaculture-cloud/internal/alerts/domain"
	alertmemory "aquaculture-cloud/internal/alerts/infrastructure/memory"
)

var t0 = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, opts ...alertapp.ServiceOption) *Handler {
	t.Helper()
	store := alertmemory.NewAlertRepository()
	ctx := context.Background()
	for _, alert := range []alerts.Alert{
		{ID: "a1", LineID: "L1", RuleID: "r1", ParameterName: "Ammonia", Description: "Ammonia high on line L1", Timestamp: t0},
		{ID: "a2", LineID: "L1", TankID: "T3", RuleID: "r2", ParameterName: "Dissolved Oxygen", Description: "Dissolved Oxygen low", Timestamp: t0.Add(time.Hour)},
		{ID: "a3", LineID: "L2", RuleID: "r1", ParameterName: "Ammonia", Description: "Ammonia high on line L2", Timestamp: t0.Add(2 * time.Hour)},
	} {
		if err := store.Insert(ctx, alert); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	service, err := alertapp.NewService(store, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decodeAlerts(t *testing.T, resp *httptest.ResponseRecorder) []alerts.Alert {
	t.Helper()
	var list []alerts.Alert
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return list
}

func TestListAlerts(t *testing.T) {
	h := newTestHandler(t)

	resp := serve(h, http.MethodGet, "/api/v1/alerts")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	list := decodeAlerts(t, resp)
	if len(list) != 3 || list[0].ID != "a3" || list[2].ID != "a1" {
		t.Fatalf("unexpected list: %+v", list)
	}

	list = decodeAlerts(t, serve(h, http.MethodGet, "/api/v1/alerts?q=oxygen"))
	if len(list) != 1 || list[0].ID != "a2" {
		t.Fatalf("unexpected search result: %+v", list)
	}

	list = decodeAlerts(t, serve(h, http.MethodGet, "/api/v1/alerts?line_id=L1&from=2024-05-06T08:30:00Z"))
	if len(list) != 1 || list[0].ID != "a2" {
		t.Fatalf("unexpected filtered result: %+v", list)
	}

	list = decodeAlerts(t, serve(h, http.MethodGet, "/api/v1/alerts?from=2024-05-07T00:00:00Z&to=2024-05-06T00:00:00Z"))
	if len(list) != 0 {
		t.Fatalf("expected empty result for inverted range, got %+v", list)
	}

	if resp := serve(h, http.MethodGet, "/api/v1/alerts?from=yesterday"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if resp := serve(h, http.MethodPost, "/api/v1/alerts"); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestResolveFlow(t *testing.T) {
	h := newTestHandler(t)

	resp := serve(h, http.MethodPost, "/api/v1/alerts/a1/resolve")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var alert alerts.Alert
	if err := json.Unmarshal(resp.Body.Bytes(), &alert); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !alert.Resolved || alert.ResolvedAt == nil {
		t.Fatalf("expected resolved alert, got %+v", alert)
	}

	list := decodeAlerts(t, serve(h, http.MethodGet, "/api/v1/alerts?unresolved=true&line_id=L1"))
	if len(list) != 1 || list[0].ID != "a2" {
		t.Fatalf("unexpected unresolved list: %+v", list)
	}

	var stats alerts.Stats
	resp = serve(h, http.MethodGet, "/api/v1/alerts/stats")
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 3 || stats.Unresolved != 2 || stats.ByLine["L1"].Unresolved != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = serve(h, http.MethodPost, "/api/v1/alerts/a1/unresolve")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = serve(h, http.MethodPost, "/api/v1/alerts/a1/toggle")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = serve(h, http.MethodGet, "/api/v1/alerts/a1")
	if err := json.Unmarshal(resp.Body.Bytes(), &alert); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !alert.Resolved {
		t.Fatalf("expected toggled alert to be resolved")
	}
}

func TestMissingAlertMutations(t *testing.T) {
	h := newTestHandler(t)
	if resp := serve(h, http.MethodPost, "/api/v1/alerts/nope/resolve"); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := serve(h, http.MethodPost, "/api/v1/alerts/nope/resolve?strict=true"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := serve(h, http.MethodGet, "/api/v1/alerts/nope"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := serve(h, http.MethodPost, "/api/v1/alerts/a1/archive"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	strict := newTestHandler(t, alertapp.WithStrictMutations(true))
	if resp := serve(strict, http.MethodPost, "/api/v1/alerts/nope/unresolve"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestExportAlerts(t *testing.T) {
	h := newTestHandler(t)

	resp := serve(h, http.MethodGet, "/api/v1/alerts/export.pdf")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf body")
	}

	resp = serve(h, http.MethodGet, "/api/v1/alerts/export.xlsx?line_id=L2")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip container for xlsx")
	}
}
