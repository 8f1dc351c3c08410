package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alerts "aquaculture-cloud/internal/alerts/domain"
)

func TestRuleRepositoryListActive(t *testing.T) {
	repo, err := NewRuleRepository(
		alerts.AlertRule{ID: "r2", ParameterID: "ph", ThresholdMin: 6.5, ThresholdMax: 8.5, Active: true},
		alerts.AlertRule{ID: "r1", ParameterID: "ammonia", ThresholdMax: 0.8, DedupWindow: 3 * time.Hour, Active: true},
		alerts.AlertRule{ID: "r3", ParameterID: "salinity", ThresholdMin: 25, ThresholdMax: 35},
	)
	require.NoError(t, err)
	ctx := context.Background()

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "r1", active[0].ID)
	assert.Equal(t, "r2", active[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rule, err := repo.Get(ctx, "r3")
	require.NoError(t, err)
	assert.False(t, rule.Active)
	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, alerts.ErrRuleNotFound)
}

func TestRuleRepositoryRejectsInvalid(t *testing.T) {
	_, err := NewRuleRepository(alerts.AlertRule{ID: "bad", ParameterID: "ph", ThresholdMin: 9, ThresholdMax: 6})
	assert.ErrorIs(t, err, alerts.ErrInvalidRule)
}
