package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsafety-tn/accidents-backend-go/internal/database"
	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

type seedAccident struct {
	occurredAt  time.Time
	severity    string
	cause       string
	governorate string
	delegation  string
	source      string
}

func seed(t *testing.T, db *sql.DB, accidents []seedAccident) {
	t.Helper()
	for _, a := range accidents {
		source := a.source
		if source == "" {
			source = "manual"
		}
		_, err := db.Exec(
			`INSERT INTO accidents (occurred_at, severity, cause, governorate, delegation, source)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			FormatTime(a.occurredAt), a.severity, a.cause, a.governorate, a.delegation, source,
		)
		require.NoError(t, err)
	}
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestCountWithFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 3, 10, 8), severity: "fatal", cause: "speeding", governorate: "Tunis"},
		{occurredAt: at(2024, 3, 12, 9), severity: "minor", cause: "speeding", governorate: "Sfax"},
		{occurredAt: at(2024, 5, 1, 10), severity: "serious", cause: "distraction", governorate: "Tunis"},
	})

	total, err := repo.Count(models.AccidentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	count, err := repo.Count(models.AccidentFilter{Governorate: "Tunis"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	start := at(2024, 3, 1, 0)
	end := at(2024, 3, 31, 23)
	count, err = repo.Count(models.AccidentFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.Count(models.AccidentFilter{Cause: "speeding", Severity: "fatal"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountRangeInclusiveBounds(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	boundary := at(2024, 1, 1, 0)
	seed(t, db, []seedAccident{
		{occurredAt: boundary, severity: "minor", governorate: "Tunis"},
	})

	count, err := repo.CountRange(models.AccidentFilter{}, boundary, boundary)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHighSeverityCountIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 0), severity: "Fatal", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 2, 0), severity: "SERIOUS", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 3, 0), severity: "minor", governorate: "Tunis"},
	})

	count, err := repo.HighSeverityCount(models.AccidentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGroupCountOrderingAndTies(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 0), severity: "minor", cause: "speeding", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 2, 0), severity: "minor", cause: "speeding", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 3, 0), severity: "minor", cause: "distraction", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 4, 0), severity: "minor", cause: "alcohol", governorate: "Tunis"},
	})

	buckets, err := repo.GroupCount(models.AccidentFilter{}, "cause")
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, Bucket{Key: "speeding", Count: 2}, buckets[0])
	// Tied counts resolve alphabetically.
	assert.Equal(t, Bucket{Key: "alcohol", Count: 1}, buckets[1])
	assert.Equal(t, Bucket{Key: "distraction", Count: 1}, buckets[2])
}

func TestGroupCountRejectsUnknownColumn(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)

	_, err := repo.GroupCount(models.AccidentFilter{}, "occurred_at; DROP TABLE accidents")
	assert.Error(t, err)
}

func TestGroupCountZonesCoalescesDelegation(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 0), severity: "minor", governorate: "Tunis", delegation: "La Marsa"},
		{occurredAt: at(2024, 1, 2, 0), severity: "minor", governorate: "Tunis", delegation: ""},
		{occurredAt: at(2024, 1, 3, 0), severity: "minor", governorate: "Tunis", delegation: ""},
	})

	buckets, err := repo.GroupCountZones(models.AccidentFilter{})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, Bucket{Key: "Tunis", Count: 2}, buckets[0])
	assert.Equal(t, Bucket{Key: "La Marsa", Count: 1}, buckets[1])
}

func TestPeriodCountsMonthly(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 5, 0), severity: "minor", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 20, 0), severity: "minor", governorate: "Tunis"},
		{occurredAt: at(2024, 3, 1, 0), severity: "minor", governorate: "Tunis"},
	})

	counts, err := repo.PeriodCounts(models.AccidentFilter{}, "%Y-%m")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, PeriodCount{Period: "2024-01", Count: 2}, counts[0])
	assert.Equal(t, PeriodCount{Period: "2024-03", Count: 1}, counts[1])
}

func TestHeatmapCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	// 2024-01-07 is a Sunday, 2024-01-08 a Monday.
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 7, 17), severity: "minor", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 7, 17), severity: "minor", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 8, 8), severity: "minor", governorate: "Tunis"},
	})

	cells, err := repo.HeatmapCounts(models.AccidentFilter{})
	require.NoError(t, err)
	require.Len(t, cells, 2)

	byCell := map[[2]int]int{}
	for _, c := range cells {
		byCell[[2]int{c.Hour, c.Weekday}] = c.Count
	}
	assert.Equal(t, 2, byCell[[2]int{17, 0}]) // Sunday 17:00
	assert.Equal(t, 1, byCell[[2]int{8, 1}])  // Monday 08:00
}

func TestZoneCountsHonorsMinCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	var accidents []seedAccident
	for i := 0; i < 5; i++ {
		accidents = append(accidents, seedAccident{
			occurredAt: at(2024, 1, 1+i, 0), severity: "minor", governorate: "Tunis", delegation: "La Marsa",
		})
	}
	accidents = append(accidents, seedAccident{
		occurredAt: at(2024, 2, 1, 0), severity: "minor", governorate: "Sfax",
	})
	seed(t, db, accidents)

	buckets, err := repo.ZoneCounts(models.AccidentFilter{}, 5, 10)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "La Marsa", buckets[0].Key)
	assert.Equal(t, 5, buckets[0].Count)
}

func TestZoneHighSeverityAndCauses(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 17), severity: "fatal", cause: "speeding", governorate: "Tunis", delegation: "La Marsa"},
		{occurredAt: at(2024, 1, 2, 17), severity: "minor", cause: "speeding", governorate: "Tunis", delegation: "La Marsa"},
		{occurredAt: at(2024, 1, 3, 9), severity: "minor", cause: "distraction", governorate: "Tunis", delegation: "La Marsa"},
		// No delegation: zone falls back to the governorate, so this record
		// must not count toward La Marsa.
		{occurredAt: at(2024, 1, 4, 9), severity: "fatal", cause: "speeding", governorate: "Tunis"},
	})

	high, err := repo.ZoneHighSeverityCount(models.AccidentFilter{}, "La Marsa")
	require.NoError(t, err)
	assert.Equal(t, 1, high)

	causes, err := repo.ZoneTopCauses(models.AccidentFilter{}, "La Marsa", 3)
	require.NoError(t, err)
	require.Len(t, causes, 2)
	assert.Equal(t, "speeding", causes[0].Key)

	hours, err := repo.ZonePeakHours(models.AccidentFilter{}, "La Marsa", 2)
	require.NoError(t, err)
	require.NotEmpty(t, hours)
	assert.Equal(t, "17", hours[0].Key)
}

func TestSeverityCountsByCause(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 0), severity: "fatal", cause: "speeding", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 2, 0), severity: "minor", cause: "speeding", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 3, 0), severity: "minor", cause: "speeding", governorate: "Tunis"},
		{occurredAt: at(2024, 1, 4, 0), severity: "", cause: "speeding", governorate: "Tunis"},
	})

	counts, err := repo.SeverityCountsByCause(models.AccidentFilter{}, "speeding")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"fatal": 1, "minor": 2, "unknown": 1}, counts)
}

func TestMonthlyCountsForUnknownGovernorate(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 0), severity: "minor", governorate: ""},
		{occurredAt: at(2024, 1, 2, 0), severity: "minor", governorate: "Tunis"},
	})

	counts, err := repo.MonthlyCountsFor("", at(2023, 12, 1, 0))
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, PeriodCount{Period: "2024-01", Count: 1}, counts[0])
}

func TestCountImportsSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccidentRepository(db)
	seed(t, db, []seedAccident{
		{occurredAt: at(2024, 1, 1, 0), severity: "minor", governorate: "Tunis", source: "import"},
		{occurredAt: at(2024, 1, 1, 0), severity: "minor", governorate: "Tunis", source: "manual"},
	})

	count, err := repo.CountImportsSince(at(2000, 1, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
