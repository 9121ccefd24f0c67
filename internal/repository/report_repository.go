package repository

import (
	"database/sql"
	"fmt"
)

// ReportStatusConfirmed marks a citizen report that produced an official
// accident record.
const ReportStatusConfirmed = "CONFIRMED"

// ReportRepository handles read-only queries over accident_reports. The
// report intake flow owns the write path.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Total returns the number of reports, in any status.
func (r *ReportRepository) Total() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM accident_reports").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// PeriodCounts groups reports into formatted period buckets, optionally
// restricted to one year and/or confirmed reports only.
func (r *ReportRepository) PeriodCounts(format, year string, confirmedOnly bool) ([]PeriodCount, error) {
	var conditions []string
	var args []interface{}

	if year != "" {
		conditions = append(conditions, "strftime('%Y', date) = ?")
		args = append(args, year)
	}
	if confirmedOnly {
		conditions = append(conditions, "status = ?")
		args = append(args, ReportStatusConfirmed)
	}

	query := "SELECT strftime('" + format + "', date) AS period, COUNT(*) FROM accident_reports" +
		buildWhere(conditions) + " GROUP BY period ORDER BY period"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report period counts: %w", err)
	}
	defer rows.Close()

	var counts []PeriodCount
	for rows.Next() {
		var p PeriodCount
		var period sql.NullString
		if err := rows.Scan(&period, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan report period count: %w", err)
		}
		p.Period = period.String
		counts = append(counts, p)
	}
	return counts, rows.Err()
}

// StatusCounts groups reports by status.
func (r *ReportRepository) StatusCounts() ([]Bucket, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) AS c FROM accident_reports GROUP BY status ORDER BY c DESC, status ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query report status counts: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan report status count: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
