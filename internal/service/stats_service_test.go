package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsafety-tn/accidents-backend-go/internal/cache"
	"github.com/roadsafety-tn/accidents-backend-go/internal/database"
	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func insertAccident(t *testing.T, db *sql.DB, occurredAt time.Time, severity, cause, governorate, delegation string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO accidents (occurred_at, severity, cause, governorate, delegation, source)
		 VALUES (?, ?, ?, ?, ?, 'manual')`,
		repository.FormatTime(occurredAt), severity, cause, governorate, delegation,
	)
	require.NoError(t, err)
}

func newStatsService(t *testing.T, db *sql.DB, c cache.Cache, now time.Time) *StatsService {
	t.Helper()
	s := NewStatsService(repository.NewAccidentRepository(db), repository.NewReportRepository(db), c)
	s.now = func() time.Time { return now }
	return s
}

func TestYoYChange(t *testing.T) {
	assert.Equal(t, 100.0, YoYChange(5, 0))
	assert.Equal(t, 0.0, YoYChange(0, 0))
	assert.Equal(t, 50.0, YoYChange(150, 100))
	assert.Equal(t, -25.0, YoYChange(75, 100))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 100.0, PercentChange(3, 0))
	assert.Equal(t, 0.0, PercentChange(0, 0))
	assert.Equal(t, -100.0, PercentChange(0, 4))
	assert.Equal(t, 33.33, PercentChange(4, 3))
}

func TestTitleLabel(t *testing.T) {
	assert.Equal(t, "Road Conditions", titleLabel("road_conditions"))
	assert.Equal(t, "Speeding", titleLabel("speeding"))
	assert.Equal(t, "", titleLabel(""))
}

func TestGranularityFormat(t *testing.T) {
	format, gran := GranularityFormat("day")
	assert.Equal(t, "%Y-%m-%d", format)
	assert.Equal(t, "day", gran)

	format, gran = GranularityFormat("bogus")
	assert.Equal(t, "%Y-%m", format)
	assert.Equal(t, "month", gran)
}

func TestKPIs(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := newStatsService(t, db, nil, now)

	insertAccident(t, db, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), "fatal", "speeding", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), "minor", "speeding", "Sfax", "")
	insertAccident(t, db, time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC), "minor", "distraction", "Tunis", "")

	kpis, err := s.KPIs(models.AccidentFilter{}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, kpis.Total)
	assert.Equal(t, 2, kpis.YearToDate)
	assert.Equal(t, 1, kpis.MonthToDate)
	assert.InDelta(t, 1.0/3, kpis.HighSeverityRate, 0.0001)
	assert.Equal(t, "speeding", kpis.TopCause.Name)
	assert.Equal(t, "Speeding", kpis.TopCause.Label)
	assert.Equal(t, 2, kpis.TopCause.Count)
	assert.Equal(t, "Tunis", kpis.TopGovernorate.Name)
	// 2 this year vs 1 last year.
	assert.Equal(t, 100.0, kpis.YoYChangePct)
}

func TestKPIsAvgPerDayExplicitRange(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := newStatsService(t, db, nil, now)

	for day := 1; day <= 10; day++ {
		insertAccident(t, db, time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	kpis, err := s.KPIs(models.AccidentFilter{Start: &start, End: &end}, "")
	require.NoError(t, err)

	assert.Equal(t, 10, kpis.Total)
	assert.Equal(t, 1.0, kpis.AvgPerDay)
}

func TestBySeverityPercentages(t *testing.T) {
	db := newTestDB(t)
	s := newStatsService(t, db, nil, time.Now().UTC())

	insertAccident(t, db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "fatal", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	result, err := s.BySeverity(models.AccidentFilter{}, "")
	require.NoError(t, err)

	require.Equal(t, []string{"minor", "fatal"}, result.Labels)
	require.Equal(t, []int{3, 1}, result.Values)
	require.Len(t, result.Percentages, 2)
	assert.Equal(t, 75.0, result.Percentages[0])
	assert.Equal(t, 25.0, result.Percentages[1])
}

func TestHourWeekdayMatrix(t *testing.T) {
	db := newTestDB(t)
	s := newStatsService(t, db, nil, time.Now().UTC())

	// 2024-01-07 is a Sunday: display column 6 (Monday-first grid).
	insertAccident(t, db, time.Date(2024, 1, 7, 17, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 1, 7, 17, 30, 0, 0, time.UTC), "minor", "", "Tunis", "")

	matrix, err := s.HourWeekday(models.AccidentFilter{}, "")
	require.NoError(t, err)

	require.Len(t, matrix.Matrix, 24)
	require.Len(t, matrix.Matrix[17], 7)
	assert.Equal(t, 2, matrix.Matrix[17][6])
	assert.Equal(t, "Mon", matrix.Weekdays[0])
	assert.Equal(t, "Sun", matrix.Weekdays[6])
}

func TestSankeyLabelsUnknowns(t *testing.T) {
	db := newTestDB(t)
	s := newStatsService(t, db, nil, time.Now().UTC())

	insertAccident(t, db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "fatal", "", "", "")

	graph, err := s.Sankey(models.AccidentFilter{}, "")
	require.NoError(t, err)

	assert.Contains(t, graph.Nodes, "Cause: Unknown cause")
	assert.Contains(t, graph.Nodes, "Severity: fatal")
	assert.Contains(t, graph.Nodes, "Location: Unknown location")
	require.Len(t, graph.Links, 2)
	assert.Equal(t, 1, graph.Links[0].Value)
}

func TestGovernorateTimeseriesBackfillsZeros(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	s := newStatsService(t, db, nil, now)

	insertAccident(t, db, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	result, err := s.GovernorateTimeseries(3, 5)
	require.NoError(t, err)

	require.Len(t, result.Series, 1)
	assert.Equal(t, "Tunis", result.Series[0].Label)
	require.Equal(t, len(result.Labels), len(result.Series[0].Values))

	byMonth := map[string]int{}
	for i, label := range result.Labels {
		byMonth[label] = result.Series[0].Values[i]
	}
	assert.Equal(t, 1, byMonth["2024-04"])
	assert.Equal(t, 0, byMonth["2024-05"])
	assert.Equal(t, 1, byMonth["2024-06"])
}

func TestHotspotRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, "critical", HotspotRiskLevel(40.0, 20))
	assert.Equal(t, "high", HotspotRiskLevel(39.9, 20))
	assert.Equal(t, "high", HotspotRiskLevel(40.0, 19))
	assert.Equal(t, "high", HotspotRiskLevel(25.0, 1))
	assert.Equal(t, "high", HotspotRiskLevel(0, 30))
	assert.Equal(t, "medium", HotspotRiskLevel(10.0, 1))
	assert.Equal(t, "medium", HotspotRiskLevel(9.9, 15))
	assert.Equal(t, "low", HotspotRiskLevel(9.9, 14))
}

func TestHotspots(t *testing.T) {
	db := newTestDB(t)
	s := newStatsService(t, db, nil, time.Now().UTC())

	for i := 0; i < 4; i++ {
		insertAccident(t, db, time.Date(2024, 1, 1+i, 17, 0, 0, 0, time.UTC), "fatal", "speeding", "Tunis", "La Marsa")
	}
	insertAccident(t, db, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), "minor", "distraction", "Tunis", "La Marsa")

	hotspots, err := s.Hotspots(models.AccidentFilter{}, 10, 5, "")
	require.NoError(t, err)

	require.Len(t, hotspots, 1)
	h := hotspots[0]
	assert.Equal(t, "La Marsa", h.Location)
	assert.Equal(t, 5, h.Count)
	assert.Equal(t, 80.0, h.SeverityScore)
	assert.Equal(t, "high", h.RiskLevel)
	require.NotEmpty(t, h.TopCauses)
	assert.Equal(t, "speeding", h.TopCauses[0].Cause)
	require.NotEmpty(t, h.PeakTimes)
	assert.Equal(t, 17, h.PeakTimes[0].Hour)
}

func TestSeverityDistributionColors(t *testing.T) {
	db := newTestDB(t)
	s := newStatsService(t, db, nil, time.Now().UTC())

	insertAccident(t, db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "fatal", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "", "", "Tunis", "")

	result, err := s.SeverityDistribution(models.AccidentFilter{}, "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 50.0, result.HighSeverityPct)

	colors := map[string]string{}
	for _, slice := range result.Distribution {
		colors[slice.Severity] = slice.Color
	}
	assert.Equal(t, "#dc2626", colors["fatal"])
	assert.Equal(t, "#6b7280", colors["unknown"])
}

func TestCauseAnalysis(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	s := newStatsService(t, db, nil, now)

	insertAccident(t, db, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "fatal", "speeding", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), "minor", "speeding", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), "minor", "distraction", "Tunis", "")

	result, err := s.CauseAnalysis(models.AccidentFilter{}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Causes, 2)

	top := result.Causes[0]
	assert.Equal(t, "speeding", top.Cause)
	assert.Equal(t, 2, top.Count)
	assert.Equal(t, 66.7, top.Percentage)
	assert.Equal(t, map[string]int{"fatal": 1, "minor": 1}, top.SeverityBreakdown)
	// (5 + 1) / 2
	assert.Equal(t, 3.0, top.AvgSeverityScore)
}

func TestCachedResultsServeStaleWithinTTL(t *testing.T) {
	db := newTestDB(t)
	mem := cache.NewMemory()
	s := newStatsService(t, db, mem, time.Now().UTC())

	insertAccident(t, db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	first, err := s.BySeverity(models.AccidentFilter{}, "by_severity:")
	require.NoError(t, err)
	require.Equal(t, []int{1}, first.Values)

	// A write after the cache fill is not visible until expiry.
	insertAccident(t, db, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	second, err := s.BySeverity(models.AccidentFilter{}, "by_severity:")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, second.Values)

	// Flushing the cache makes the write visible.
	mem.Clear()
	third, err := s.BySeverity(models.AccidentFilter{}, "by_severity:")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, third.Values)
}

func TestComparisonBounds(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	label, curStart, prevStart, prevEnd, yearAgoStart, yearAgoEnd := comparisonBounds(now, "month")
	assert.Equal(t, "month", label)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), curStart)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), prevStart)
	assert.Equal(t, time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), prevEnd)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), yearAgoStart)
	assert.Equal(t, time.Date(2023, 5, 31, 23, 59, 59, 0, time.UTC), yearAgoEnd)

	label, curStart, _, _, _, _ = comparisonBounds(now, "quarter")
	assert.Equal(t, "quarter", label)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), curStart)

	label, curStart, prevStart, _, yearAgoStart, _ = comparisonBounds(now, "year")
	assert.Equal(t, "year", label)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), curStart)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), prevStart)
	assert.Equal(t, prevStart, yearAgoStart)
}

func TestComparison(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	s := newStatsService(t, db, nil, now)

	insertAccident(t, db, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), "fatal", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")
	insertAccident(t, db, time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC), "minor", "", "Tunis", "")

	result, err := s.Comparison(models.AccidentFilter{}, "month", "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Current.Count)
	assert.Equal(t, 1, result.Previous.Count)
	assert.Equal(t, 1, result.Change.CountDiff)
	assert.Equal(t, 100.0, result.Change.CountPct)
	assert.Equal(t, 1, result.YearAgo.Count)
	assert.Equal(t, 100.0, result.YearAgo.ChangePct)

	fatal := result.Change.SeverityChanges["fatal"]
	assert.Equal(t, 1, fatal.Current)
	assert.Equal(t, 0, fatal.Previous)
	assert.Equal(t, 100.0, fatal.Pct)
}

func TestQuickStats(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := newStatsService(t, db, nil, now)

	insertAccident(t, db, now.AddDate(0, 0, -3), "fatal", "speeding", "Tunis", "")
	insertAccident(t, db, now.AddDate(0, 0, -5), "minor", "speeding", "Tunis", "")
	insertAccident(t, db, now.AddDate(0, 0, -45), "minor", "distraction", "Sfax", "")

	result, err := s.QuickStats("month", "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalAccidents)
	assert.Equal(t, 1, result.HighSeverityCount)
	assert.Equal(t, 50.0, result.HighSeverityPercent)
	assert.Equal(t, "speeding", result.TopCause)
	assert.Equal(t, "Tunis", result.MostAffectedArea)
	assert.Equal(t, "month", result.Period)
}
