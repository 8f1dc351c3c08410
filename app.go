package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	alertapp "aquaculture-cloud/internal/alerts/application"
	alertmemory "aquaculture-cloud/internal/alerts/infrastructure/memory"
	alertinterfaces "aquaculture-cloud/internal/alerts/interfaces"
	alerthttp "aquaculture-cloud/internal/alerts/interfaces/http"
	alertnotify "aquaculture-cloud/internal/alerts/notify"
	analyticsapp "aquaculture-cloud/internal/analytics/application"
	analyticshttp "aquaculture-cloud/internal/analytics/interfaces/http"
	apihttp "aquaculture-cloud/internal/api/http"
	"aquaculture-cloud/internal/eventing"
	masterdatamemory "aquaculture-cloud/internal/masterdata/infrastructure/memory"
	"aquaculture-cloud/internal/masterdata/infrastructure/yamlfile"
	telemetryapp "aquaculture-cloud/internal/telemetry/application"
	"aquaculture-cloud/internal/telemetry/application/events"
	telemetrymemory "aquaculture-cloud/internal/telemetry/infrastructure/memory"
	telemetryhttp "aquaculture-cloud/internal/telemetry/interfaces/http"
)

type app struct {
	handler   http.Handler
	refresher *alertapp.StatsRefresher
}

// newApp wires the stores, services and routes for one process.
func newApp(cfg config, logger *zap.Logger) (*app, error) {
	location, err := time.LoadLocation(cfg.AggregationTZ)
	if err != nil {
		return nil, fmt.Errorf("aggregation timezone %q: %w", cfg.AggregationTZ, err)
	}

	tables, err := yamlfile.Load(cfg.TablesConfig)
	if err != nil {
		return nil, err
	}
	paramRepo, err := masterdatamemory.NewParameterRepository(tables.Parameters...)
	if err != nil {
		return nil, err
	}
	ruleRepo, err := alertmemory.NewRuleRepository(tables.Rules...)
	if err != nil {
		return nil, err
	}
	logger.Info("reference tables loaded",
		zap.Int("parameters", len(tables.Parameters)),
		zap.Int("rules", len(tables.Rules)),
		zap.String("aggregation_tz", location.String()),
	)

	readingRepo := telemetrymemory.NewReadingRepository()
	alertRepo := alertmemory.NewAlertRepository()
	bus := eventing.NewInMemoryBus()

	notifier := alertnotify.NewMultiNotifier(logger.Named("notify"), alertnotify.NewLoggingNotifier(logger.Named("alerts")))
	generator, err := alertapp.NewGenerator(paramRepo, ruleRepo, alertRepo,
		alertapp.WithGeneratorNotifier(notifier),
		alertapp.WithGeneratorLogger(logger.Named("generator")),
	)
	if err != nil {
		return nil, err
	}
	alertService, err := alertapp.NewService(alertRepo,
		alertapp.WithNotifier(notifier),
		alertapp.WithStrictMutations(cfg.StrictMutations),
		alertapp.WithLogger(logger.Named("alerts")),
	)
	if err != nil {
		return nil, err
	}
	alertConsumer, err := alertinterfaces.NewReadingsAppendedConsumer(generator, logger.Named("alerts"))
	if err != nil {
		return nil, err
	}
	eventing.Subscribe(bus, "alerts.generator", func(ctx context.Context, evt events.ReadingsAppended) error {
		return alertConsumer.Consume(ctx, evt)
	}, logger)

	ingestService, err := telemetryapp.NewIngestService(readingRepo, bus, logger.Named("ingest"))
	if err != nil {
		return nil, err
	}
	statusService, err := telemetryapp.NewStatusService(readingRepo, paramRepo)
	if err != nil {
		return nil, err
	}
	timeSeriesService, err := analyticsapp.NewTimeSeriesService(readingRepo, location)
	if err != nil {
		return nil, err
	}
	refresher, err := alertapp.NewStatsRefresher(alertService, cfg.StatsSchedule, logger.Named("stats"))
	if err != nil {
		return nil, fmt.Errorf("stats schedule %q: %w", cfg.StatsSchedule, err)
	}

	telemetryHandler, err := telemetryhttp.NewHandler(ingestService, statusService, readingRepo, logger.Named("http"))
	if err != nil {
		return nil, err
	}
	alertHandler, err := alerthttp.NewHandler(alertService, logger.Named("http"))
	if err != nil {
		return nil, err
	}
	timeSeriesHandler, err := analyticshttp.NewTimeSeriesHandler(timeSeriesService)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/readings", telemetryHandler)
	mux.Handle("/api/v1/readings/", telemetryHandler)
	mux.Handle("/api/v1/status", telemetryHandler)
	mux.Handle("/api/v1/alerts", alertHandler)
	mux.Handle("/api/v1/alerts/", alertHandler)
	mux.Handle("/api/v1/timeseries", timeSeriesHandler)
	mux.Handle("/api/v1/parameters", apihttp.NewParametersHandler(paramRepo))
	mux.Handle("/api/v1/alert-rules", apihttp.NewRulesHandler(ruleRepo))
	mux.Handle("/api/v1/classify", apihttp.NewClassifyHandler(paramRepo))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &app{handler: mux, refresher: refresher}, nil
}
