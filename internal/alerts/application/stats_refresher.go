package application

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"aquaculture-cloud/internal/observability/metrics"
)

// DefaultStatsSchedule refreshes alert gauges twice a minute.
const DefaultStatsSchedule = "@every 30s"

// StatsRefresher periodically publishes alert statistics to metrics and logs.
type StatsRefresher struct {
	service  *Service
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewStatsRefresher constructs a refresher. An empty schedule uses DefaultStatsSchedule.
func NewStatsRefresher(service *Service, schedule string, logger *zap.Logger) (*StatsRefresher, error) {
	if service == nil {
		return nil, errors.New("alerts stats refresher: nil service")
	}
	if schedule == "" {
		schedule = DefaultStatsSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &StatsRefresher{
		service:  service,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.RunOnce(context.Background()) }); err != nil {
		return nil, err
	}
	return r, nil
}

// Start runs the schedule until ctx is cancelled.
func (r *StatsRefresher) Start(ctx context.Context) {
	if r == nil {
		return
	}
	r.RunOnce(ctx)
	r.cron.Start()
	<-ctx.Done()
	<-r.cron.Stop().Done()
}

// RunOnce refreshes the gauges from current store state.
func (r *StatsRefresher) RunOnce(ctx context.Context) {
	stats, err := r.service.Stats(ctx)
	if err != nil {
		r.logger.Error("alert stats refresh failed", zap.Error(err))
		return
	}
	unresolved := make(map[string]int, len(stats.ByLine))
	for line, lineStats := range stats.ByLine {
		unresolved[line] = lineStats.Unresolved
	}
	metrics.SetAlertGauges(stats.Total, unresolved)
	r.logger.Debug("alert stats refreshed",
		zap.Int("total", stats.Total),
		zap.Int("unresolved", stats.Unresolved),
		zap.Int("lines", len(stats.ByLine)),
	)
}
