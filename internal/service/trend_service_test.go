package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
)

func TestTrendAnalysisDaily(t *testing.T) {
	db := newTestDB(t)
	s := NewTrendService(repository.NewAccidentRepository(db), nil)

	// One accident per day over a week, plus an extra on the last day.
	last := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		insertAccident(t, db, last.AddDate(0, 0, -i), "minor", "", "Tunis", "")
	}
	insertAccident(t, db, last, "minor", "", "Tunis", "")

	result, err := s.Analysis(models.AccidentFilter{}, "day", 0, "")
	require.NoError(t, err)

	assert.Equal(t, "day", result.Granularity)
	require.Len(t, result.Periods, 7)
	assert.Equal(t, "2024-06-09", result.Periods[0])
	assert.Equal(t, "2024-06-15", result.Periods[6])
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 2}, result.Values)

	// Window is min(7, n): only the final position has a defined average.
	require.Len(t, result.MovingAverage, 7)
	for i := 0; i < 6; i++ {
		assert.Nil(t, result.MovingAverage[i])
	}
	require.NotNil(t, result.MovingAverage[6])
	assert.InDelta(t, 8.0/7, *result.MovingAverage[6], 0.01)

	require.Len(t, result.ChangeRate, 7)
	assert.Nil(t, result.ChangeRate[0])
	require.NotNil(t, result.ChangeRate[6])
	assert.Equal(t, 100.0, *result.ChangeRate[6])

	// Last three points: 1 -> 2 is more than +10%.
	assert.Equal(t, "increasing", result.Trend)
	assert.Len(t, result.Forecast, 3)
}

func TestTrendAnalysisKeepsLastNPeriods(t *testing.T) {
	db := newTestDB(t)
	s := NewTrendService(repository.NewAccidentRepository(db), nil)

	for i := 0; i < 10; i++ {
		day := time.Date(2024, 6, 1+i, 12, 0, 0, 0, time.UTC)
		insertAccident(t, db, day, "minor", "", "Tunis", "")
	}

	result, err := s.Analysis(models.AccidentFilter{}, "day", 7, "")
	require.NoError(t, err)

	require.Len(t, result.Periods, 7)
	assert.Equal(t, "2024-06-04", result.Periods[0])
	assert.Equal(t, "2024-06-10", result.Periods[6])
}

func TestTrendAnalysisSkipsEmptyBuckets(t *testing.T) {
	db := newTestDB(t)
	s := NewTrendService(repository.NewAccidentRepository(db), nil)

	insertAccident(t, db, time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	result, err := s.Analysis(models.AccidentFilter{}, "day", 0, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-06-04", "2024-06-10"}, result.Periods)
	assert.Equal(t, []int{1, 1}, result.Values)
}

func TestTrendAnalysisInsufficientData(t *testing.T) {
	db := newTestDB(t)
	s := NewTrendService(repository.NewAccidentRepository(db), nil)

	insertAccident(t, db, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	result, err := s.Analysis(models.AccidentFilter{}, "month", 12, "")
	require.NoError(t, err)

	assert.Equal(t, "month", result.Granularity)
	require.Equal(t, []string{"2024-06"}, result.Periods)
	assert.Equal(t, "insufficient_data", result.Trend)
	assert.Empty(t, result.Forecast)
}
