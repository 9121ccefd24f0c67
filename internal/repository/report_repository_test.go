package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReports(t *testing.T, db *sql.DB, reports []struct {
	date   time.Time
	status string
}) {
	t.Helper()
	for _, r := range reports {
		_, err := db.Exec(
			"INSERT INTO accident_reports (date, status) VALUES (?, ?)",
			FormatTime(r.date), r.status,
		)
		require.NoError(t, err)
	}
}

func TestReportPeriodCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)
	seedReports(t, db, []struct {
		date   time.Time
		status string
	}{
		{at(2024, 1, 5, 0), "PENDING"},
		{at(2024, 1, 10, 0), ReportStatusConfirmed},
		{at(2024, 2, 1, 0), ReportStatusConfirmed},
		{at(2023, 12, 1, 0), "REJECTED"},
	})

	all, err := repo.PeriodCounts("%Y-%m", "", false)
	require.NoError(t, err)
	require.Len(t, all, 3)

	confirmed, err := repo.PeriodCounts("%Y-%m", "2024", true)
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	assert.Equal(t, PeriodCount{Period: "2024-01", Count: 1}, confirmed[0])
	assert.Equal(t, PeriodCount{Period: "2024-02", Count: 1}, confirmed[1])
}

func TestReportStatusCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)
	seedReports(t, db, []struct {
		date   time.Time
		status string
	}{
		{at(2024, 1, 1, 0), "PENDING"},
		{at(2024, 1, 2, 0), "PENDING"},
		{at(2024, 1, 3, 0), ReportStatusConfirmed},
	})

	total, err := repo.Total()
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	buckets, err := repo.StatusCounts()
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, Bucket{Key: "PENDING", Count: 2}, buckets[0])
	assert.Equal(t, Bucket{Key: ReportStatusConfirmed, Count: 1}, buckets[1])
}
