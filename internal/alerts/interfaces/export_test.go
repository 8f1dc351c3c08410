package interfaces

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	alertapp "aquaculture-cloud/internal/alerts/application"
	alerts "aquaculture-cloud/internal/alerts/domain"
	alertmemory "aquaculture-cloud/internal/alerts/infrastructure/memory"
	masterdata "aquaculture-cloud/internal/masterdata/domain"
	mdmemory "aquaculture-cloud/internal/masterdata/infrastructure/memory"
	"aquaculture-cloud/internal/telemetry/application/events"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

var t0 = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func sampleReport() ([]alerts.Alert, alerts.Stats) {
	resolvedAt := t0.Add(time.Hour)
	list := []alerts.Alert{
		{ID: "a2", LineID: "L2", RuleID: "r1", ParameterName: "Ammonia", Unit: "mg/L", Value: 0.95, ThresholdMax: 0.8, Timestamp: t0.Add(time.Hour), Description: "Ammonia 0.95 mg/L above maximum 0.80 mg/L on line L2"},
		{ID: "a1", LineID: "L1", TankID: "T1", RuleID: "r2", ParameterName: "Dissolved Oxygen", Value: 4.2, ThresholdMin: 5, ThresholdMax: 12, Timestamp: t0, Resolved: true, ResolvedAt: &resolvedAt},
	}
	stats := alerts.NewStats()
	for _, alert := range list {
		stats.Add(alert)
	}
	return list, stats
}

func TestBuildAlertReportXLSX(t *testing.T) {
	list, stats := sampleReport()
	data, err := BuildAlertReportXLSX(list, stats, t0)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	line, err := f.GetCellValue("summary", "A5")
	require.NoError(t, err)
	assert.Equal(t, "L1", line)
	total, err := f.GetCellValue("summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "2", total)

	id, err := f.GetCellValue("alerts", "A2")
	require.NoError(t, err)
	assert.Equal(t, "a2", id)
	tank, err := f.GetCellValue("alerts", "D3")
	require.NoError(t, err)
	assert.Equal(t, "T1", tank)
}

func TestBuildAlertReportPDF(t *testing.T) {
	list, stats := sampleReport()
	data, err := BuildAlertReportPDF(list, stats, t0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	empty, err := BuildAlertReportPDF(nil, alerts.NewStats(), t0)
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestReadingsAppendedConsumer(t *testing.T) {
	params, err := mdmemory.NewParameterRepository(masterdata.ParameterDefinition{
		ID: masterdata.ParamAmmonia, Name: "Ammonia", Unit: "mg/L",
		Normal: masterdata.Range{Max: 0.5}, Warning: masterdata.Range{Max: 0.8}, Danger: masterdata.Range{Max: 1},
	})
	require.NoError(t, err)
	rules, err := alertmemory.NewRuleRepository(alerts.AlertRule{
		ID: "rule-ammonia-high", ParameterID: masterdata.ParamAmmonia, ThresholdMax: 0.8, DedupWindow: 3 * time.Hour, Active: true,
	})
	require.NoError(t, err)
	store := alertmemory.NewAlertRepository()
	generator, err := alertapp.NewGenerator(params, rules, store)
	require.NoError(t, err)

	_, err = NewReadingsAppendedConsumer(nil, nil)
	assert.Error(t, err)
	consumer, err := NewReadingsAppendedConsumer(generator, zap.NewNop())
	require.NoError(t, err)

	err = consumer.Consume(context.Background(), events.ReadingsAppended{Readings: []telemetry.Reading{
		{ID: "p1", LineID: "L1", Timestamp: t0, Payload: telemetry.PackTestValues{Ammonia: telemetry.Float(0.9)}},
		{ID: "p2", LineID: "L1", Timestamp: t0.Add(time.Hour), Payload: telemetry.PackTestValues{Ammonia: telemetry.Float(0.95)}},
	}})
	require.NoError(t, err)

	list, err := store.List(context.Background(), alerts.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, t0, list[0].Timestamp)
}
