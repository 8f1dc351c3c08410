package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aquaculture-cloud/internal/eventing"
	masterdata "aquaculture-cloud/internal/masterdata/domain"
	mdmemory "aquaculture-cloud/internal/masterdata/infrastructure/memory"
	"aquaculture-cloud/internal/telemetry/application/events"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
	"aquaculture-cloud/internal/telemetry/infrastructure/memory"
)

var t0 = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func TestIngestPublishesStoredBatch(t *testing.T) {
	repo := memory.NewReadingRepository()
	bus := eventing.NewInMemoryBus()
	var received []events.ReadingsAppended
	eventing.Subscribe(bus, "test", func(_ context.Context, evt events.ReadingsAppended) error {
		received = append(received, evt)
		return nil
	}, zap.NewNop())

	service, err := NewIngestService(repo, bus, zap.NewNop())
	require.NoError(t, err)

	result, err := service.Ingest(context.Background(), []telemetry.Reading{
		{ID: "r1", LineID: "L1", Timestamp: t0, Payload: telemetry.PackTestValues{Ammonia: telemetry.Float(0.3)}},
		{ID: "r1", LineID: "L1", Timestamp: t0, Payload: telemetry.PackTestValues{Ammonia: telemetry.Float(0.4)}},
		{LineID: "L1", Timestamp: t0, Payload: telemetry.TankValues{PH: telemetry.Float(7)}},
	})
	require.NoError(t, err)
	require.Len(t, result.Stored, 1)
	require.Len(t, result.Rejected, 2)
	assert.Equal(t, 1, result.Rejected[0].Index)
	assert.Equal(t, 2, result.Rejected[1].Index)

	require.Len(t, received, 1)
	require.Len(t, received[0].Readings, 1)
	assert.Equal(t, "r1", received[0].Readings[0].ID)
}

func TestIngestSkipsPublishWhenNothingStored(t *testing.T) {
	repo := memory.NewReadingRepository()
	bus := eventing.NewInMemoryBus()
	calls := 0
	eventing.Subscribe(bus, "test", func(_ context.Context, _ events.ReadingsAppended) error {
		calls++
		return nil
	}, nil)

	service, err := NewIngestService(repo, bus, nil)
	require.NoError(t, err)
	result, err := service.Ingest(context.Background(), []telemetry.Reading{{LineID: "L1"}})
	require.NoError(t, err)
	assert.Empty(t, result.Stored)
	assert.Len(t, result.Rejected, 1)
	assert.Zero(t, calls)
}

func TestIngestReturnsHandlerError(t *testing.T) {
	repo := memory.NewReadingRepository()
	bus := eventing.NewInMemoryBus()
	boom := errors.New("boom")
	eventing.Subscribe(bus, "failing", func(_ context.Context, _ events.ReadingsAppended) error {
		return boom
	}, nil)

	service, err := NewIngestService(repo, bus, nil)
	require.NoError(t, err)
	result, err := service.Ingest(context.Background(), []telemetry.Reading{
		{LineID: "L1", Timestamp: t0, Payload: telemetry.PackTestValues{Nitrite: telemetry.Float(0.1)}},
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, result.Stored, 1, "readings stay stored when a consumer fails")
}

func TestLiveStatusClassifiesLatest(t *testing.T) {
	repo := memory.NewReadingRepository()
	params, err := mdmemory.NewParameterRepository(
		masterdata.ParameterDefinition{
			ID: masterdata.ParamDissolvedOxygen, Name: "Dissolved Oxygen", Unit: "mg/L",
			Normal: masterdata.Range{Min: 6, Max: 10}, Warning: masterdata.Range{Min: 5, Max: 12}, Danger: masterdata.Range{Min: 4, Max: 14},
		},
	)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Append(ctx, telemetry.Reading{LineID: "L1", TankID: "T1", Timestamp: t0,
		Payload: telemetry.TankValues{DissolvedOxygen: telemetry.Float(7)}})
	require.NoError(t, err)
	_, err = repo.Append(ctx, telemetry.Reading{LineID: "L1", TankID: "T1", Timestamp: t0.Add(time.Hour),
		Payload: telemetry.TankValues{DissolvedOxygen: telemetry.Float(4.5), PH: telemetry.Float(7.2)}})
	require.NoError(t, err)

	service, err := NewStatusService(repo, params)
	require.NoError(t, err)

	status, found, err := service.LiveStatus(ctx, telemetry.VariantTank, telemetry.Key{LineID: "L1", TankID: "T1"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, t0.Add(time.Hour), status.Timestamp)
	assert.Equal(t, masterdata.TierWarning, status.Worst)
	require.Len(t, status.Fields, 2)
	assert.Equal(t, masterdata.TierWarning, status.Fields[0].Tier)
	assert.Equal(t, "Dissolved Oxygen", status.Fields[0].Name)
	assert.Empty(t, status.Fields[1].Tier, "ph has no definition in this table")

	_, found, err = service.LiveStatus(ctx, telemetry.VariantTank, telemetry.Key{LineID: "L9", TankID: "T1"})
	require.NoError(t, err)
	assert.False(t, found)
}
