package gantt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/gantry/internal/dates"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/tasks"
)

var now = time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)

func TestBuild_Empty(t *testing.T) {
	c := Build(nil, now)
	assert.NotNil(t, c.Rows)
	assert.Empty(t, c.Rows)
	assert.Equal(t, 1, c.TotalDays)
	assert.Equal(t, "2026-02-10", dates.Format(c.BaselineStart, true))
}

func TestBuild_LateFinishGeometry(t *testing.T) {
	c := Build([]tasks.Task{
		{ID: "A", PlannedStart: "2026-02-03", PlannedEnd: "2026-02-07", ActualStart: "2026-02-03", ActualEnd: "2026-02-08"},
	}, now)

	require.Len(t, c.Rows, 1)
	r := c.Rows[0]
	assert.Equal(t, 0, r.PlannedOffset)
	assert.Equal(t, 5, r.PlannedDuration)
	assert.Equal(t, 6, r.ActualDuration)
	assert.Equal(t, 1, r.DelayDays)
	assert.Equal(t, 0, r.StartSlipDays)
	assert.Equal(t, health.Completed, r.Status)
	assert.Equal(t, 6, c.TotalDays, "window stretches to the late actual finish")
	assert.Equal(t, "2026-02-07", dates.Format(c.BaselineEnd, true))
	assert.Equal(t, "2026-02-08", dates.Format(c.ProjectEnd, true))
}

func TestBuild_OffsetsAndBaseline(t *testing.T) {
	c := Build([]tasks.Task{
		{ID: "late", PlannedStart: "2026-02-05", PlannedEnd: "2026-02-06"},
		{ID: "first", PlannedStart: "01-02-2026", PlannedEnd: "03-02-2026"},
	}, now)

	assert.Equal(t, "2026-02-01", dates.Format(c.BaselineStart, true))
	assert.Equal(t, "late", c.Rows[0].ID, "input order is preserved")
	assert.Equal(t, 4, c.Rows[0].PlannedOffset)
	assert.Equal(t, 2, c.Rows[0].PlannedDuration)
	assert.Equal(t, 0, c.Rows[1].PlannedOffset)
	assert.Equal(t, 3, c.Rows[1].PlannedDuration)
	assert.Equal(t, 6, c.TotalDays)
}

func TestBuild_ActualOffsetNeverBeforePlanned(t *testing.T) {
	c := Build([]tasks.Task{
		{ID: "anchor", PlannedStart: "2026-02-01", PlannedEnd: "2026-02-02"},
		{ID: "early", PlannedStart: "2026-02-05", PlannedEnd: "2026-02-08", ActualStart: "2026-02-02"},
		{ID: "pre-baseline", PlannedStart: "2026-02-01", PlannedEnd: "2026-02-03", ActualStart: "2026-01-25"},
	}, now)

	early := c.Rows[1]
	assert.Equal(t, 4, early.PlannedOffset)
	assert.Equal(t, 4, early.ActualOffset, "actual bar is clamped to the planned offset")
	assert.Equal(t, -3, early.StartSlipDays)
	assert.Equal(t, 0, early.ActualDuration, "no finish recorded")

	pre := c.Rows[2]
	assert.Equal(t, 0, pre.ActualOffset)

	for _, r := range c.Rows {
		assert.GreaterOrEqual(t, r.ActualOffset, r.PlannedOffset)
		assert.GreaterOrEqual(t, r.PlannedDuration, 1)
		assert.GreaterOrEqual(t, r.ActualDuration, 0)
	}
}

func TestBuild_MissingPlannedDatesFallBackToBaseline(t *testing.T) {
	c := Build([]tasks.Task{
		{ID: "dated", PlannedStart: "2026-02-03", PlannedEnd: "2026-02-06"},
		{ID: "undated", PlannedStart: "tbd", PlannedEnd: ""},
	}, now)

	require.Len(t, c.Rows, 2)
	u := c.Rows[1]
	assert.Equal(t, 0, u.PlannedOffset)
	assert.Equal(t, 1, u.PlannedDuration)
	assert.Equal(t, "2026-02-03", u.PlannedStartDate)
	assert.Equal(t, "2026-02-03", u.PlannedEndDate)
	assert.Equal(t, "-", u.ActualStartDate)
	assert.False(t, u.HasActualStart())
}

func TestBuild_BaselineFallsBackToActualsAndPlannedEnds(t *testing.T) {
	c := Build([]tasks.Task{
		{ID: "a", PlannedEnd: "2026-02-09", ActualStart: "2026-02-04"},
		{ID: "b", PlannedEnd: "2026-02-06"},
	}, now)
	assert.Equal(t, "2026-02-04", dates.Format(c.BaselineStart, true))
	assert.Equal(t, "2026-02-09", dates.Format(c.BaselineEnd, true))
}

func TestBuild_NoParseableDates(t *testing.T) {
	c := Build([]tasks.Task{{ID: "x", PlannedStart: "??"}}, now)
	require.Len(t, c.Rows, 1)
	assert.Equal(t, 1, c.TotalDays)
	assert.Equal(t, "2026-02-10", dates.Format(c.BaselineStart, true))
	assert.Equal(t, health.OnTrack, c.Rows[0].Status)
}

func TestBuild_ExactlyOneStatusPerRow(t *testing.T) {
	c := Build([]tasks.Task{
		{ID: "1", PlannedStart: "2026-01-01", PlannedEnd: "2026-01-05", ActualEnd: "2026-01-06"},
		{ID: "2", PlannedStart: "2026-01-01", PlannedEnd: "2026-03-05"},
		{ID: "3", PlannedStart: "2026-03-01", PlannedEnd: "2026-03-05"},
	}, now)
	for _, r := range c.Rows {
		assert.True(t, r.Status.IsValid())
		assert.Equal(t, r.HasActualEnd(), r.Status == health.Completed)
	}
}
