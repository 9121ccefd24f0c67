package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
)

// sqliteTimeLayout is the canonical timestamp format stored in the
// accidents table. Formatting bound parameters the same way keeps range
// comparisons and strftime() consistent.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// FormatTime renders a timestamp the way the store keeps them (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// zoneExpr buckets records by delegation, falling back to the governorate
// when the delegation is null or empty.
const zoneExpr = "COALESCE(NULLIF(delegation, ''), governorate)"

// highSeverityExpr matches the severities counted as high severity.
const highSeverityExpr = "LOWER(severity) IN ('fatal', 'serious')"

// AccidentRepository handles read-only queries over the accidents table.
// It never mutates rows; the import and report-confirmation flows own the
// write path.
type AccidentRepository struct {
	db *sql.DB
}

// NewAccidentRepository creates a new accident repository
func NewAccidentRepository(db *sql.DB) *AccidentRepository {
	return &AccidentRepository{db: db}
}

// Bucket is one group-by-count row. Key is empty for NULL categories.
type Bucket struct {
	Key   string
	Count int
}

// PeriodCount is one time-bucketed count row.
type PeriodCount struct {
	Period string
	Count  int
}

// HourWeekdayCount is one cell of the hour/weekday grouping. Weekday uses
// the store's 0=Sunday numbering.
type HourWeekdayCount struct {
	Hour    int
	Weekday int
	Count   int
}

// SankeyRow is one cause/severity/governorate combination with its count.
type SankeyRow struct {
	Cause       string
	Severity    string
	Governorate string
	Count       int
}

// whereClause translates a filter into SQL conditions. Bounds on
// occurred_at are inclusive; category filters are exact matches.
func whereClause(f models.AccidentFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.Start != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, FormatTime(*f.Start))
	}
	if f.End != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, FormatTime(*f.End))
	}
	if f.Governorate != "" {
		conditions = append(conditions, "governorate = ?")
		args = append(args, f.Governorate)
	}
	if f.Delegation != "" {
		conditions = append(conditions, "delegation = ?")
		args = append(args, f.Delegation)
	}
	if f.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, f.Severity)
	}
	if f.Cause != "" {
		conditions = append(conditions, "cause = ?")
		args = append(args, f.Cause)
	}
	if f.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, f.Source)
	}

	return conditions, args
}

func buildWhere(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// Count returns the number of accidents matching the filter.
func (r *AccidentRepository) Count(f models.AccidentFilter) (int, error) {
	conditions, args := whereClause(f)
	query := "SELECT COUNT(*) FROM accidents" + buildWhere(conditions)

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accidents: %w", err)
	}
	return count, nil
}

// CountRange counts accidents in [start, end] on top of the filter's
// categorical constraints. The filter's own date range is ignored.
func (r *AccidentRepository) CountRange(f models.AccidentFilter, start, end time.Time) (int, error) {
	conditions, args := whereClause(f.WithoutDates())
	conditions = append(conditions, "occurred_at >= ?", "occurred_at <= ?")
	args = append(args, FormatTime(start), FormatTime(end))

	query := "SELECT COUNT(*) FROM accidents" + buildWhere(conditions)
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accidents in range: %w", err)
	}
	return count, nil
}

// CountSince counts accidents at or after t on top of the filter's
// categorical constraints.
func (r *AccidentRepository) CountSince(f models.AccidentFilter, t time.Time) (int, error) {
	conditions, args := whereClause(f.WithoutDates())
	conditions = append(conditions, "occurred_at >= ?")
	args = append(args, FormatTime(t))

	query := "SELECT COUNT(*) FROM accidents" + buildWhere(conditions)
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent accidents: %w", err)
	}
	return count, nil
}

// HighSeverityCount counts filtered accidents whose severity is fatal or
// serious, case-insensitively.
func (r *AccidentRepository) HighSeverityCount(f models.AccidentFilter) (int, error) {
	conditions, args := whereClause(f)
	conditions = append(conditions, highSeverityExpr)

	query := "SELECT COUNT(*) FROM accidents" + buildWhere(conditions)
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count high severity accidents: %w", err)
	}
	return count, nil
}

// groupCountColumns whitelists the columns GroupCount may group by.
var groupCountColumns = map[string]bool{
	"severity":    true,
	"cause":       true,
	"governorate": true,
	"delegation":  true,
	"source":      true,
}

// GroupCount groups filtered accidents by one category column. Rows come
// back ordered by count descending, then key ascending, so ties break
// deterministically.
func (r *AccidentRepository) GroupCount(f models.AccidentFilter, column string) ([]Bucket, error) {
	if !groupCountColumns[column] {
		return nil, fmt.Errorf("unsupported group column: %s", column)
	}

	conditions, args := whereClause(f)
	query := fmt.Sprintf(
		"SELECT %s, COUNT(*) AS c FROM accidents%s GROUP BY %s ORDER BY c DESC, %s ASC",
		column, buildWhere(conditions), column, column,
	)

	return r.queryBuckets(query, args)
}

// GroupCountZones groups filtered accidents by delegation with governorate
// fallback, ordered by count descending then zone ascending.
func (r *AccidentRepository) GroupCountZones(f models.AccidentFilter) ([]Bucket, error) {
	conditions, args := whereClause(f)
	query := fmt.Sprintf(
		"SELECT %s AS zone, COUNT(*) AS c FROM accidents%s GROUP BY zone ORDER BY c DESC, zone ASC",
		zoneExpr, buildWhere(conditions),
	)
	return r.queryBuckets(query, args)
}

func (r *AccidentRepository) queryBuckets(query string, args []interface{}) ([]Bucket, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run group count: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var key sql.NullString
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group count row: %w", err)
		}
		buckets = append(buckets, Bucket{Key: key.String, Count: count})
	}
	return buckets, rows.Err()
}

// PeriodCounts groups filtered accidents into formatted period buckets in
// ascending order. format is a SQLite strftime format such as "%Y-%m".
func (r *AccidentRepository) PeriodCounts(f models.AccidentFilter, format string) ([]PeriodCount, error) {
	conditions, args := whereClause(f)
	query := "SELECT strftime('" + format + "', occurred_at) AS period, COUNT(*) FROM accidents" +
		buildWhere(conditions) + " GROUP BY period ORDER BY period"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query period counts: %w", err)
	}
	defer rows.Close()

	var counts []PeriodCount
	for rows.Next() {
		var p PeriodCount
		var period sql.NullString
		if err := rows.Scan(&period, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan period count: %w", err)
		}
		p.Period = period.String
		counts = append(counts, p)
	}
	return counts, rows.Err()
}

// HeatmapCounts groups filtered accidents by hour of day and weekday.
// Weekday numbering follows SQLite strftime('%w'): 0=Sunday.
func (r *AccidentRepository) HeatmapCounts(f models.AccidentFilter) ([]HourWeekdayCount, error) {
	conditions, args := whereClause(f)
	query := `SELECT CAST(strftime('%H', occurred_at) AS INTEGER) AS hour,
		CAST(strftime('%w', occurred_at) AS INTEGER) AS weekday,
		COUNT(*)
		FROM accidents` + buildWhere(conditions) + " GROUP BY hour, weekday"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query heatmap counts: %w", err)
	}
	defer rows.Close()

	var cells []HourWeekdayCount
	for rows.Next() {
		var c HourWeekdayCount
		if err := rows.Scan(&c.Hour, &c.Weekday, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan heatmap cell: %w", err)
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// SankeyCounts groups filtered accidents by cause, severity and
// governorate for the flow diagram.
func (r *AccidentRepository) SankeyCounts(f models.AccidentFilter) ([]SankeyRow, error) {
	conditions, args := whereClause(f)
	query := "SELECT cause, severity, governorate, COUNT(*) FROM accidents" +
		buildWhere(conditions) + " GROUP BY cause, severity, governorate"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sankey counts: %w", err)
	}
	defer rows.Close()

	var out []SankeyRow
	for rows.Next() {
		var cause, severity, gov sql.NullString
		var count int
		if err := rows.Scan(&cause, &severity, &gov, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sankey row: %w", err)
		}
		out = append(out, SankeyRow{
			Cause:       cause.String,
			Severity:    severity.String,
			Governorate: gov.String,
			Count:       count,
		})
	}
	return out, rows.Err()
}

// EarliestOccurrence returns the timestamp of the oldest accident, if any.
func (r *AccidentRepository) EarliestOccurrence() (time.Time, bool, error) {
	var earliest sql.NullString
	err := r.db.QueryRow("SELECT MIN(occurred_at) FROM accidents").Scan(&earliest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query earliest accident: %w", err)
	}
	if !earliest.Valid {
		return time.Time{}, false, nil
	}
	t, perr := time.Parse(sqliteTimeLayout, earliest.String)
	if perr != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse earliest timestamp %q: %w", earliest.String, perr)
	}
	return t, true, nil
}

// TopGovernorates returns the most frequent governorates, NULL grouped as
// the empty key, limited to n.
func (r *AccidentRepository) TopGovernorates(n int) ([]Bucket, error) {
	query := "SELECT governorate, COUNT(*) AS c FROM accidents GROUP BY governorate ORDER BY c DESC, governorate ASC LIMIT ?"
	return r.queryBuckets(query, []interface{}{n})
}

// MonthlyCountsFor returns per-month counts for one governorate since a
// cutoff. An empty governorate matches records with no governorate.
func (r *AccidentRepository) MonthlyCountsFor(governorate string, since time.Time) ([]PeriodCount, error) {
	var cond string
	args := []interface{}{}
	if governorate == "" {
		cond = "(governorate IS NULL OR governorate = '')"
	} else {
		cond = "governorate = ?"
		args = append(args, governorate)
	}
	args = append(args, FormatTime(since))

	query := "SELECT strftime('%Y-%m', occurred_at) AS period, COUNT(*) FROM accidents WHERE " +
		cond + " AND occurred_at >= ? GROUP BY period ORDER BY period"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly counts: %w", err)
	}
	defer rows.Close()

	var counts []PeriodCount
	for rows.Next() {
		var p PeriodCount
		if err := rows.Scan(&p.Period, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		counts = append(counts, p)
	}
	return counts, rows.Err()
}

// SeverityBreakdownRange returns severity counts within [start, end] on
// top of the filter's categorical constraints. NULL severities bucket
// under "unknown".
func (r *AccidentRepository) SeverityBreakdownRange(f models.AccidentFilter, start, end time.Time) (map[string]int, error) {
	conditions, args := whereClause(f.WithoutDates())
	conditions = append(conditions, "occurred_at >= ?", "occurred_at <= ?")
	args = append(args, FormatTime(start), FormatTime(end))

	query := "SELECT COALESCE(NULLIF(severity, ''), 'unknown'), COUNT(*) FROM accidents" +
		buildWhere(conditions) + " GROUP BY 1"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query severity breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var sev string
		var count int
		if err := rows.Scan(&sev, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity breakdown: %w", err)
		}
		breakdown[sev] = count
	}
	return breakdown, rows.Err()
}

// SeverityCountsByCause returns severity counts for one cause under the
// filter. NULL severities bucket under "unknown".
func (r *AccidentRepository) SeverityCountsByCause(f models.AccidentFilter, cause string) (map[string]int, error) {
	conditions, args := whereClause(f)
	conditions = append(conditions, "cause = ?")
	args = append(args, cause)

	query := "SELECT COALESCE(NULLIF(severity, ''), 'unknown'), COUNT(*) FROM accidents" +
		buildWhere(conditions) + " GROUP BY 1"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cause severities: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sev string
		var count int
		if err := rows.Scan(&sev, &count); err != nil {
			return nil, fmt.Errorf("failed to scan cause severities: %w", err)
		}
		counts[sev] = count
	}
	return counts, rows.Err()
}

// ZoneCounts returns zones (delegation falling back to governorate) with
// at least minCount filtered accidents, ranked by count, limited to n.
func (r *AccidentRepository) ZoneCounts(f models.AccidentFilter, minCount, n int) ([]Bucket, error) {
	conditions, args := whereClause(f)
	query := fmt.Sprintf(
		"SELECT %s AS zone, COUNT(*) AS c FROM accidents%s GROUP BY zone HAVING c >= ? ORDER BY c DESC, zone ASC LIMIT ?",
		zoneExpr, buildWhere(conditions),
	)
	args = append(args, minCount, n)
	return r.queryBuckets(query, args)
}

// zoneConditions narrows a filtered query to one hotspot zone: either the
// delegation matches, or the record has no delegation and its governorate
// matches.
func zoneConditions(f models.AccidentFilter, zone string) ([]string, []interface{}) {
	conditions, args := whereClause(f)
	conditions = append(conditions,
		"(delegation = ? OR ((delegation IS NULL OR delegation = '') AND governorate = ?))")
	args = append(args, zone, zone)
	return conditions, args
}

// ZoneHighSeverityCount counts high-severity accidents within one zone.
func (r *AccidentRepository) ZoneHighSeverityCount(f models.AccidentFilter, zone string) (int, error) {
	conditions, args := zoneConditions(f, zone)
	conditions = append(conditions, highSeverityExpr)

	query := "SELECT COUNT(*) FROM accidents" + buildWhere(conditions)
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count zone high severity: %w", err)
	}
	return count, nil
}

// ZoneTopCauses returns the n most frequent non-null causes within a zone.
func (r *AccidentRepository) ZoneTopCauses(f models.AccidentFilter, zone string, n int) ([]Bucket, error) {
	conditions, args := zoneConditions(f, zone)
	conditions = append(conditions, "cause IS NOT NULL AND cause != ''")
	query := "SELECT cause, COUNT(*) AS c FROM accidents" + buildWhere(conditions) +
		" GROUP BY cause ORDER BY c DESC, cause ASC LIMIT ?"
	args = append(args, n)
	return r.queryBuckets(query, args)
}

// ZonePeakHours returns the n busiest hours within a zone.
func (r *AccidentRepository) ZonePeakHours(f models.AccidentFilter, zone string, n int) ([]Bucket, error) {
	conditions, args := zoneConditions(f, zone)
	query := "SELECT strftime('%H', occurred_at) AS hour, COUNT(*) AS c FROM accidents" +
		buildWhere(conditions) + " GROUP BY hour ORDER BY c DESC, hour ASC LIMIT ?"
	args = append(args, n)
	return r.queryBuckets(query, args)
}

// HourCounts returns accident counts per hour of day across the whole
// store (the predictive layer works on unfiltered history).
func (r *AccidentRepository) HourCounts() (map[int]int, error) {
	rows, err := r.db.Query(`SELECT CAST(strftime('%H', occurred_at) AS INTEGER) AS hour, COUNT(*)
		FROM accidents WHERE occurred_at IS NOT NULL GROUP BY hour`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hourly count: %w", err)
		}
		counts[hour] = count
	}
	return counts, rows.Err()
}

// WeekdayCounts returns accident counts per weekday (0=Sunday, the store
// convention) at or after the cutoff.
func (r *AccidentRepository) WeekdayCounts(since time.Time) (map[int]int, error) {
	rows, err := r.db.Query(`SELECT CAST(strftime('%w', occurred_at) AS INTEGER) AS day, COUNT(*)
		FROM accidents WHERE occurred_at IS NOT NULL AND occurred_at >= ? GROUP BY day`,
		FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query weekday counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var day, count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan weekday count: %w", err)
		}
		counts[day] = count
	}
	return counts, rows.Err()
}

// GovernorateCounts returns every non-null governorate with its total
// accident count, ordered by count descending then name.
func (r *AccidentRepository) GovernorateCounts() ([]Bucket, error) {
	query := `SELECT governorate, COUNT(*) AS c FROM accidents
		WHERE governorate IS NOT NULL AND governorate != ''
		GROUP BY governorate ORDER BY c DESC, governorate ASC`
	return r.queryBuckets(query, nil)
}

// SeverityCountsFor returns severity counts for one governorate.
func (r *AccidentRepository) SeverityCountsFor(governorate string) (map[string]int, error) {
	rows, err := r.db.Query(
		"SELECT severity, COUNT(*) FROM accidents WHERE governorate = ? GROUP BY severity",
		governorate)
	if err != nil {
		return nil, fmt.Errorf("failed to query severity counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sev sql.NullString
		var count int
		if err := rows.Scan(&sev, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity count: %w", err)
		}
		if sev.String != "" {
			counts[strings.ToLower(sev.String)] += count
		}
	}
	return counts, rows.Err()
}

// CountForGovernorate counts accidents for one governorate, optionally
// bounded to [start, end) when the bounds are non-zero.
func (r *AccidentRepository) CountForGovernorate(governorate string, start, end time.Time) (int, error) {
	conditions := []string{"governorate = ?"}
	args := []interface{}{governorate}
	if !start.IsZero() {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, FormatTime(start))
	}
	if !end.IsZero() {
		conditions = append(conditions, "occurred_at < ?")
		args = append(args, FormatTime(end))
	}

	query := "SELECT COUNT(*) FROM accidents" + buildWhere(conditions)
	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count governorate accidents: %w", err)
	}
	return count, nil
}

// CauseCountsSince returns the n most frequent non-null causes at or
// after the cutoff.
func (r *AccidentRepository) CauseCountsSince(since time.Time, n int) ([]Bucket, error) {
	query := `SELECT cause, COUNT(*) AS c FROM accidents
		WHERE cause IS NOT NULL AND cause != '' AND occurred_at >= ?
		GROUP BY cause ORDER BY c DESC, cause ASC LIMIT ?`
	return r.queryBuckets(query, []interface{}{FormatTime(since), n})
}

// CountImportsSince counts imported accidents created at or after t.
func (r *AccidentRepository) CountImportsSince(t time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM accidents WHERE created_at >= ? AND source = ?",
		FormatTime(t), models.SourceImport,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count imports: %w", err)
	}
	return count, nil
}
