package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alerts "aquaculture-cloud/internal/alerts/domain"
)

var t0 = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func newAlert(id, rule, line, tank string, at time.Time) alerts.Alert {
	return alerts.Alert{
		ID:            id,
		Timestamp:     at,
		LineID:        line,
		TankID:        tank,
		RuleID:        rule,
		ParameterID:   "ammonia",
		ParameterName: "Ammonia",
		Description:   fmt.Sprintf("Ammonia high on line %s", line),
	}
}

func TestInsertUnlessSuppressedWindow(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	stored, err := repo.InsertUnlessSuppressed(ctx, newAlert("a1", "r1", "L1", "", t0), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = repo.InsertUnlessSuppressed(ctx, newAlert("a2", "r1", "L1", "", t0.Add(30*time.Minute)), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored)

	stored, err = repo.InsertUnlessSuppressed(ctx, newAlert("a3", "r1", "L1", "", t0.Add(time.Hour)), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored, "window bound is inclusive")

	stored, err = repo.InsertUnlessSuppressed(ctx, newAlert("a4", "r1", "L1", "", t0.Add(90*time.Minute)), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestInsertUnlessSuppressedOutOfOrder(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	stored, err := repo.InsertUnlessSuppressed(ctx, newAlert("a1", "r1", "L1", "", t0.Add(30*time.Minute)), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = repo.InsertUnlessSuppressed(ctx, newAlert("a2", "r1", "L1", "", t0), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored, "earlier breach within the window of a stored alert")

	stored, err = repo.InsertUnlessSuppressed(ctx, newAlert("a3", "r1", "L1", "", t0.Add(-time.Hour)), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored, "90 minutes before the stored alert")
}

func TestInsertUnlessSuppressedScopesBySubject(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	for _, a := range []alerts.Alert{
		newAlert("a1", "r1", "L1", "T1", t0),
		newAlert("a2", "r1", "L1", "T2", t0),
		newAlert("a3", "r2", "L1", "T1", t0),
		newAlert("a4", "r1", "L2", "T1", t0),
	} {
		stored, err := repo.InsertUnlessSuppressed(ctx, a, 3*time.Hour)
		require.NoError(t, err)
		assert.Truef(t, stored, "alert %s should not be suppressed", a.ID)
	}
}

func TestResolvedAlertStillSuppresses(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	_, err := repo.InsertUnlessSuppressed(ctx, newAlert("a1", "r1", "L1", "", t0), time.Hour)
	require.NoError(t, err)
	_, _, err = repo.Resolve(ctx, "a1", t0.Add(time.Minute))
	require.NoError(t, err)

	stored, err := repo.InsertUnlessSuppressed(ctx, newAlert("a2", "r1", "L1", "", t0.Add(10*time.Minute)), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestConcurrentInsertUnlessSuppressed(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.InsertUnlessSuppressed(ctx, newAlert(fmt.Sprintf("a%d", i), "r1", "L1", "", t0), time.Hour)
		}(i)
	}
	wg.Wait()

	list, err := repo.List(ctx, alerts.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestResolveIsIdempotent(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newAlert("a1", "r1", "L1", "", t0)))

	first, changed, err := repo.Resolve(ctx, "a1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, first.ResolvedAt)

	second, changed, err := repo.Resolve(ctx, "a1", t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, second.Resolved)
	assert.Equal(t, *first.ResolvedAt, *second.ResolvedAt)

	reopened, changed, err := repo.Unresolve(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, reopened.Resolved)
	assert.Nil(t, reopened.ResolvedAt)

	_, _, err = repo.Resolve(ctx, "missing", t0)
	assert.ErrorIs(t, err, alerts.ErrNotFound)
	_, _, err = repo.Unresolve(ctx, "missing")
	assert.ErrorIs(t, err, alerts.ErrNotFound)
}

func TestToggle(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newAlert("a1", "r1", "L1", "", t0)))

	toggled, err := repo.Toggle(ctx, "a1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, toggled.Resolved)
	require.NotNil(t, toggled.ResolvedAt)
	assert.Equal(t, t0.Add(time.Hour), *toggled.ResolvedAt)

	toggled, err = repo.Toggle(ctx, "a1", t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, toggled.Resolved)
	assert.Nil(t, toggled.ResolvedAt)

	_, err = repo.Toggle(ctx, "missing", t0)
	assert.ErrorIs(t, err, alerts.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newAlert("a1", "r1", "L1", "", t0)))
	_, _, err := repo.Resolve(ctx, "a1", t0)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	*got.ResolvedAt = t0.Add(48 * time.Hour)
	got.Description = "changed"

	again, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, t0, *again.ResolvedAt)
	assert.NotEqual(t, "changed", again.Description)

	assert.ErrorIs(t, repo.Insert(ctx, newAlert("a1", "r1", "L1", "", t0)), alerts.ErrDuplicateID)
}

func TestListOrderAndFilters(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newAlert("a1", "r1", "L1", "", t0)))
	require.NoError(t, repo.Insert(ctx, newAlert("a2", "r1", "L1", "T7", t0.Add(2*time.Hour))))
	require.NoError(t, repo.Insert(ctx, newAlert("a3", "r2", "L2", "", t0.Add(time.Hour))))
	_, _, err := repo.Resolve(ctx, "a2", t0.Add(3*time.Hour))
	require.NoError(t, err)

	all, err := repo.List(ctx, alerts.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a2", "a3", "a1"}, ids(all))

	unresolved, err := repo.List(ctx, alerts.Filter{OnlyUnresolved: true, LineID: "L1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, ids(unresolved))

	bySearch, err := repo.List(ctx, alerts.Filter{Search: "t7"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, ids(bySearch))

	byLineSearch, err := repo.List(ctx, alerts.Filter{Search: "line l2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a3"}, ids(byLineSearch))

	windowed, err := repo.List(ctx, alerts.Filter{Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a3"}, ids(windowed))

	empty, err := repo.List(ctx, alerts.Filter{Start: t0.Add(time.Hour), End: t0})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStatsConsistency(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.NotNil(t, stats.ByLine)

	for i := 0; i < 9; i++ {
		line := fmt.Sprintf("L%d", i%3)
		require.NoError(t, repo.Insert(ctx, newAlert(fmt.Sprintf("a%d", i), "r1", line, "", t0.Add(time.Duration(i)*time.Hour))))
		if i%2 == 0 {
			_, _, err := repo.Resolve(ctx, fmt.Sprintf("a%d", i), t0)
			require.NoError(t, err)
		}
	}

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 4, stats.Unresolved)
	total, unresolved := 0, 0
	for _, line := range stats.ByLine {
		total += line.Total
		unresolved += line.Unresolved
	}
	assert.Equal(t, stats.Total, total)
	assert.Equal(t, stats.Unresolved, unresolved)
	assert.Equal(t, 3, stats.ByLine["L0"].Total)
}

func ids(list []alerts.Alert) []string {
	result := make([]string, 0, len(list))
	for _, a := range list {
		result = append(result, a.ID)
	}
	return result
}
