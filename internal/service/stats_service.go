package service

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roadsafety-tn/accidents-backend-go/internal/cache"
	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
	"github.com/roadsafety-tn/accidents-backend-go/internal/stats"
)

// Per-endpoint cache TTLs. Short by design: staleness within the window is
// an accepted latency tradeoff, not a correctness guarantee.
const (
	ttlKPIs          = 20 * time.Second
	ttlByPeriod      = 10 * time.Second
	ttlBySeverity    = 15 * time.Second
	ttlByGovernorate = 20 * time.Second
	ttlByDelegation  = 30 * time.Second
	ttlHeatmap       = 30 * time.Second
	ttlSankey        = 20 * time.Second
	ttlComparison    = 30 * time.Second
	ttlHotspots      = 60 * time.Second
	ttlSevDist       = 30 * time.Second
	ttlCauseAnalysis = 45 * time.Second
	ttlDashboard     = 10 * time.Second
)

// StatsService computes the aggregation endpoints. Every computation is a
// pure function of (filter, store content); the injected cache only
// short-circuits recomputation.
type StatsService struct {
	accidents *repository.AccidentRepository
	reports   *repository.ReportRepository
	cache     cache.Cache
	now       func() time.Time
}

// NewStatsService creates a new stats service. cache may be nil to
// disable memoization.
func NewStatsService(accidents *repository.AccidentRepository, reports *repository.ReportRepository, c cache.Cache) *StatsService {
	return &StatsService{
		accidents: accidents,
		reports:   reports,
		cache:     c,
		now:       time.Now,
	}
}

// cached consults the cache before computing, and stores the computed
// value afterwards. An empty key or nil cache disables memoization.
func (s *StatsService) cached(key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, error) {
	if s.cache != nil && key != "" {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	if s.cache != nil && key != "" {
		s.cache.Set(key, v, ttl)
	}
	return v, nil
}

// titleLabel renders a raw category key for display: underscores become
// spaces and each word is capitalized.
func titleLabel(key string) string {
	if key == "" {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// PercentChange computes a period-over-period change. A zero previous
// value yields 100 when current is positive, else 0.
func PercentChange(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return round2(float64(current-previous) / float64(previous) * 100)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

// GranularityFormat maps a granularity parameter to its strftime format.
// Unknown values fall back to month.
func GranularityFormat(gran string) (format, normalized string) {
	switch strings.ToLower(gran) {
	case "day":
		return "%Y-%m-%d", "day"
	case "year":
		return "%Y", "year"
	default:
		return "%Y-%m", "month"
	}
}

// KPIs computes the global KPI summary.
func (s *StatsService) KPIs(f models.AccidentFilter, key string) (*models.KPISummary, error) {
	v, err := s.cached(key, ttlKPIs, func() (interface{}, error) {
		return s.computeKPIs(f)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.KPISummary), nil
}

func (s *StatsService) computeKPIs(f models.AccidentFilter) (*models.KPISummary, error) {
	out := &models.KPISummary{}

	total, err := s.accidents.Count(f)
	if err != nil {
		return nil, err
	}
	out.Total = total

	// Year-to-date and month-to-date keep the categorical filters but use
	// calendar boundaries instead of the requested range.
	now := s.now().UTC()
	startOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	if out.YearToDate, err = s.accidents.CountSince(f, startOfYear); err != nil {
		return nil, err
	}
	if out.MonthToDate, err = s.accidents.CountSince(f, startOfMonth); err != nil {
		return nil, err
	}

	highCount, err := s.accidents.HighSeverityCount(f)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		out.HighSeverityRate = round4(float64(highCount) / float64(total))
	}

	if out.TopCause, err = s.topEntry(f, "cause", total); err != nil {
		return nil, err
	}
	if out.TopGovernorate, err = s.topEntry(f, "governorate", 0); err != nil {
		return nil, err
	}
	topZone, err := s.topZone(f)
	if err != nil {
		return nil, err
	}
	out.TopDelegation = topZone

	if out.AvgPerDay, err = s.avgPerDay(f, now); err != nil {
		return nil, err
	}

	prevYearStart := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC)
	prevYearEnd := time.Date(now.Year()-1, 12, 31, 23, 59, 59, 0, time.UTC)
	prevYTD, err := s.accidents.CountRange(f, prevYearStart, prevYearEnd)
	if err != nil {
		return nil, err
	}
	out.YoYChangePct = YoYChange(out.YearToDate, prevYTD)

	return out, nil
}

// YoYChange computes the year-over-year percentage change with the
// documented zero-previous rules: 100 when only the current year has
// accidents, 0 when both years are empty.
func YoYChange(currentYTD, previousYTD int) float64 {
	if previousYTD == 0 {
		if currentYTD > 0 {
			return 100.0
		}
		return 0.0
	}
	return round2(float64(currentYTD-previousYTD) / float64(previousYTD) * 100)
}

// topEntry returns the most frequent value of a column. Ties break by the
// deterministic repository ordering (count desc, value asc). When the top
// group is the null/empty category the entry is zero-valued, matching the
// dashboard contract.
func (s *StatsService) topEntry(f models.AccidentFilter, column string, totalForPct int) (models.TopEntry, error) {
	buckets, err := s.accidents.GroupCount(f, column)
	if err != nil {
		return models.TopEntry{}, err
	}
	top := firstNamedBucket(buckets)
	if top == nil {
		return models.TopEntry{}, nil
	}
	entry := models.TopEntry{Name: top.Key, Count: top.Count}
	if column == "cause" {
		entry.Label = titleLabel(top.Key)
	} else {
		entry.Label = top.Key
	}
	if totalForPct > 0 {
		entry.Pct = round4(float64(top.Count) / float64(totalForPct))
	}
	return entry, nil
}

func (s *StatsService) topZone(f models.AccidentFilter) (models.TopEntry, error) {
	buckets, err := s.accidents.GroupCountZones(f)
	if err != nil {
		return models.TopEntry{}, err
	}
	top := firstNamedBucket(buckets)
	if top == nil {
		return models.TopEntry{}, nil
	}
	return models.TopEntry{Name: top.Key, Label: top.Key, Count: top.Count}, nil
}

// firstNamedBucket returns the highest-ranked bucket, or nil when the
// ranking is empty or led by the null category.
func firstNamedBucket(buckets []repository.Bucket) *repository.Bucket {
	if len(buckets) == 0 || buckets[0].Key == "" {
		return nil
	}
	return &buckets[0]
}

// avgPerDay divides the filtered count by the explicit date span when both
// bounds are present (minimum one day), otherwise by the trailing 30 days.
func (s *StatsService) avgPerDay(f models.AccidentFilter, now time.Time) (float64, error) {
	if f.Start != nil && f.End != nil {
		days := int(f.End.Sub(*f.Start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		count, err := s.accidents.Count(f)
		if err != nil {
			return 0, err
		}
		return round2(float64(count) / float64(days)), nil
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := startOfDay.AddDate(0, 0, -29)
	count, err := s.accidents.CountSince(f, windowStart)
	if err != nil {
		return 0, err
	}
	return round2(float64(count) / 30.0), nil
}

// TotalAccidents returns the unfiltered total.
func (s *StatsService) TotalAccidents() (*models.LabelValue, error) {
	count, err := s.accidents.Count(models.AccidentFilter{})
	if err != nil {
		return nil, err
	}
	return &models.LabelValue{Label: "Total Accidents", Value: count}, nil
}

// ByPeriod returns counts bucketed by day, month or year.
func (s *StatsService) ByPeriod(f models.AccidentFilter, granularity, key string) (*models.TimeSeries, error) {
	format, gran := GranularityFormat(granularity)

	v, err := s.cached(key, ttlByPeriod, func() (interface{}, error) {
		counts, err := s.accidents.PeriodCounts(f, format)
		if err != nil {
			return nil, err
		}
		out := &models.TimeSeries{
			Labels:      make([]string, 0, len(counts)),
			Values:      make([]int, 0, len(counts)),
			Granularity: gran,
		}
		for _, c := range counts {
			out.Labels = append(out.Labels, c.Period)
			out.Values = append(out.Values, c.Count)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TimeSeries), nil
}

// breakdown builds the shared group-by-count response shape.
func breakdown(buckets []repository.Bucket, withPercentages, titleLabels bool) *models.Breakdown {
	out := &models.Breakdown{
		Labels: make([]string, 0, len(buckets)),
		Values: make([]int, 0, len(buckets)),
		Items:  make([]models.BreakdownItem, 0, len(buckets)),
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	for _, b := range buckets {
		out.Labels = append(out.Labels, b.Key)
		out.Values = append(out.Values, b.Count)
		label := b.Key
		if titleLabels {
			label = titleLabel(b.Key)
		}
		out.Items = append(out.Items, models.BreakdownItem{Key: b.Key, Label: label, Count: b.Count})
	}
	if withPercentages && total > 0 {
		out.Percentages = make([]float64, 0, len(buckets))
		for _, b := range buckets {
			out.Percentages = append(out.Percentages, round2(float64(b.Count)/float64(total)*100))
		}
	}
	return out
}

// BySeverity returns the severity breakdown with percentages.
func (s *StatsService) BySeverity(f models.AccidentFilter, key string) (*models.Breakdown, error) {
	v, err := s.cached(key, ttlBySeverity, func() (interface{}, error) {
		buckets, err := s.accidents.GroupCount(f, "severity")
		if err != nil {
			return nil, err
		}
		return breakdown(buckets, true, true), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Breakdown), nil
}

// ByCause returns the cause breakdown. Not cached: the original endpoint
// serves it uncached and it is cheap.
func (s *StatsService) ByCause(f models.AccidentFilter) (*models.Breakdown, error) {
	buckets, err := s.accidents.GroupCount(f, "cause")
	if err != nil {
		return nil, err
	}
	return breakdown(buckets, false, true), nil
}

// ByGovernorate returns the governorate breakdown.
func (s *StatsService) ByGovernorate(f models.AccidentFilter, key string) (*models.Breakdown, error) {
	v, err := s.cached(key, ttlByGovernorate, func() (interface{}, error) {
		buckets, err := s.accidents.GroupCount(f, "governorate")
		if err != nil {
			return nil, err
		}
		return breakdown(buckets, false, false), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Breakdown), nil
}

// ByDelegation returns the zone breakdown: delegation, falling back to the
// governorate when absent.
func (s *StatsService) ByDelegation(f models.AccidentFilter, key string) (*models.Breakdown, error) {
	v, err := s.cached(key, ttlByDelegation, func() (interface{}, error) {
		buckets, err := s.accidents.GroupCountZones(f)
		if err != nil {
			return nil, err
		}
		return breakdown(buckets, false, false), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Breakdown), nil
}

// HourWeekday returns the 24x7 heatmap matrix, Monday-first.
func (s *StatsService) HourWeekday(f models.AccidentFilter, key string) (*models.HourWeekdayMatrix, error) {
	v, err := s.cached(key, ttlHeatmap, func() (interface{}, error) {
		cells, err := s.accidents.HeatmapCounts(f)
		if err != nil {
			return nil, err
		}

		matrix := make([][]int, 24)
		for h := range matrix {
			matrix[h] = make([]int, 7)
		}
		for _, c := range cells {
			idx := models.WeekdayDisplayIndex(c.Weekday)
			if c.Hour >= 0 && c.Hour < 24 && idx >= 0 && idx < 7 {
				matrix[c.Hour][idx] = c.Count
			}
		}

		hours := make([]int, 24)
		for h := range hours {
			hours[h] = h
		}
		return &models.HourWeekdayMatrix{
			Hours:    hours,
			Weekdays: models.DisplayWeekdays,
			Matrix:   matrix,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.HourWeekdayMatrix), nil
}

// Sankey returns the cause -> severity -> governorate flow graph. Null
// categories are labeled rather than dropped; zero-count links are
// excluded.
func (s *StatsService) Sankey(f models.AccidentFilter, key string) (*models.SankeyGraph, error) {
	v, err := s.cached(key, ttlSankey, func() (interface{}, error) {
		rows, err := s.accidents.SankeyCounts(f)
		if err != nil {
			return nil, err
		}

		graph := &models.SankeyGraph{Nodes: []string{}, Links: []models.SankeyLink{}}
		index := make(map[string]int)
		idx := func(label string) int {
			if i, ok := index[label]; ok {
				return i
			}
			i := len(graph.Nodes)
			index[label] = i
			graph.Nodes = append(graph.Nodes, label)
			return i
		}

		for _, row := range rows {
			if row.Count <= 0 {
				continue
			}
			cause := row.Cause
			if cause == "" {
				cause = "Unknown cause"
			}
			severity := row.Severity
			if severity == "" {
				severity = "Unknown severity"
			}
			loc := row.Governorate
			if loc == "" {
				loc = "Unknown location"
			}

			cIdx := idx("Cause: " + cause)
			sIdx := idx("Severity: " + severity)
			lIdx := idx("Location: " + loc)
			graph.Links = append(graph.Links,
				models.SankeyLink{Source: cIdx, Target: sIdx, Value: row.Count},
				models.SankeyLink{Source: sIdx, Target: lIdx, Value: row.Count},
			)
		}
		return graph, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.SankeyGraph), nil
}

// GovernorateTimeseries returns monthly counts for the top N governorates
// over a trailing window of months, back-filling absent months with 0.
func (s *StatsService) GovernorateTimeseries(months, topN int) (*models.GovernorateTimeseries, error) {
	months = clamp(months, 1, 24)
	topN = clamp(topN, 1, 20)

	now := s.now().UTC()
	startMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0)

	// Extend the window back to the oldest record so early history is not
	// silently cut off.
	if earliest, ok, err := s.accidents.EarliestOccurrence(); err != nil {
		return nil, err
	} else if ok {
		earliestMonth := time.Date(earliest.Year(), earliest.Month(), 1, 0, 0, 0, 0, time.UTC)
		if earliestMonth.Before(startMonth) {
			startMonth = earliestMonth
		}
	}

	tops, err := s.accidents.TopGovernorates(topN)
	if err != nil {
		return nil, err
	}
	if len(tops) == 0 {
		return &models.GovernorateTimeseries{Labels: []string{}, Series: []models.GovernorateSeries{}}, nil
	}

	var labels []string
	for cursor := startMonth; !cursor.After(now); cursor = cursor.AddDate(0, 1, 0) {
		labels = append(labels, cursor.Format("2006-01"))
	}

	series := make([]models.GovernorateSeries, 0, len(tops))
	for _, gov := range tops {
		counts, err := s.accidents.MonthlyCountsFor(gov.Key, startMonth)
		if err != nil {
			return nil, err
		}
		byMonth := make(map[string]int, len(counts))
		for _, c := range counts {
			byMonth[c.Period] = c.Count
		}
		values := make([]int, len(labels))
		for i, l := range labels {
			values[i] = byMonth[l]
		}

		label := gov.Key
		if label == "" {
			label = "Unknown"
		}
		series = append(series, models.GovernorateSeries{Label: label, Values: values})
	}

	return &models.GovernorateTimeseries{Labels: labels, Series: series}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConfirmedVsReported returns reported vs confirmed report counts per
// period, merged over the union of periods.
func (s *StatsService) ConfirmedVsReported(granularity, year string) (*models.ReportedVsConfirmed, error) {
	format, gran := GranularityFormat(granularity)

	reported, err := s.reports.PeriodCounts(format, year, false)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.reports.PeriodCounts(format, year, true)
	if err != nil {
		return nil, err
	}

	repMap := make(map[string]int, len(reported))
	confMap := make(map[string]int, len(confirmed))
	periodSet := make(map[string]bool)
	for _, p := range reported {
		repMap[p.Period] = p.Count
		periodSet[p.Period] = true
	}
	for _, p := range confirmed {
		confMap[p.Period] = p.Count
		periodSet[p.Period] = true
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	out := &models.ReportedVsConfirmed{
		Labels:      periods,
		Reported:    make([]int, len(periods)),
		Confirmed:   make([]int, len(periods)),
		Granularity: gran,
	}
	for i, p := range periods {
		out.Reported[i] = repMap[p]
		out.Confirmed[i] = confMap[p]
	}
	return out, nil
}

// ReportStatusCounts groups reports by status.
func (s *StatsService) ReportStatusCounts() (*models.Breakdown, error) {
	buckets, err := s.reports.StatusCounts()
	if err != nil {
		return nil, err
	}
	return breakdown(buckets, false, false), nil
}

// Dashboard returns the quick widget payload.
func (s *StatsService) Dashboard() (*models.DashboardStats, error) {
	v, err := s.cached("dashboard_stats", ttlDashboard, func() (interface{}, error) {
		now := s.now().UTC()

		total, err := s.accidents.Count(models.AccidentFilter{})
		if err != nil {
			return nil, err
		}
		reports, err := s.reports.Total()
		if err != nil {
			return nil, err
		}
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		imports, err := s.accidents.CountImportsSince(startOfDay)
		if err != nil {
			return nil, err
		}
		recent, err := s.accidents.CountSince(models.AccidentFilter{}, now.AddDate(0, 0, -7))
		if err != nil {
			return nil, err
		}

		return &models.DashboardStats{
			TotalAccidents: total,
			ReportsCount:   reports,
			ImportsToday:   imports,
			RecentCount:    recent,
			Timestamp:      now.Format(time.RFC3339),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DashboardStats), nil
}

// QuickStats returns summary numbers for dashboard widgets over a named
// trailing period.
func (s *StatsService) QuickStats(period, governorate string) (*models.QuickStats, error) {
	now := s.now().UTC()
	var start time.Time
	switch period {
	case "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case "week":
		start = now.AddDate(0, 0, -7)
	case "year":
		start = now.AddDate(0, 0, -365)
	default:
		period = "month"
		start = now.AddDate(0, 0, -30)
	}

	f := models.AccidentFilter{Start: &start, Governorate: governorate}
	total, err := s.accidents.Count(f)
	if err != nil {
		return nil, err
	}
	high, err := s.accidents.HighSeverityCount(f)
	if err != nil {
		return nil, err
	}

	// Top cause and area are reported across all governorates for context,
	// bounded to the same period.
	topCause, err := s.topEntry(models.AccidentFilter{Start: &start}, "cause", 0)
	if err != nil {
		return nil, err
	}
	topArea, err := s.topEntry(models.AccidentFilter{Start: &start}, "governorate", 0)
	if err != nil {
		return nil, err
	}

	prevStart := start.Add(-now.Sub(start))
	prevTotal, err := s.accidents.CountRange(models.AccidentFilter{Governorate: governorate}, prevStart, start.Add(-time.Second))
	if err != nil {
		return nil, err
	}

	trend := "stable"
	var trendPct float64
	if prevTotal > 0 {
		trendPct = round1(float64(total-prevTotal) / float64(prevTotal) * 100)
		if trendPct > 5 {
			trend = "up"
		} else if trendPct < -5 {
			trend = "down"
		}
	}

	out := &models.QuickStats{
		TotalAccidents:    total,
		HighSeverityCount: high,
		TopCause:          orUnknown(topCause.Name),
		TopCauseCount:     topCause.Count,
		MostAffectedArea:  orUnknown(topArea.Name),
		MostAffectedCount: topArea.Count,
		Trend:             trend,
		TrendPercent:      trendPct,
		Period:            period,
		Governorate:       governorate,
	}
	if total > 0 {
		out.HighSeverityPercent = round1(float64(high) / float64(total) * 100)
	}
	return out, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// ParseIntParam parses a positive integer query parameter, returning the
// fallback when absent or malformed.
func ParseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// correlationWindow is how far back cause correlation series reach.
const correlationWindow = 12 // months

// causeSeriesFor aligns a cause's monthly counts onto the label axis.
func causeSeriesFor(counts []repository.PeriodCount, labels []string) []float64 {
	byMonth := make(map[string]int, len(counts))
	for _, c := range counts {
		byMonth[c.Period] = c.Count
	}
	series := make([]float64, len(labels))
	for i, l := range labels {
		series[i] = float64(byMonth[l])
	}
	return series
}

// causeCorrelations computes pairwise Pearson correlations between the
// monthly series of the top causes. Only meaningful pairs (|r| >= 0.5)
// are reported.
func (s *StatsService) causeCorrelations(f models.AccidentFilter, causes []models.CauseStats) ([]models.CauseCorrelation, error) {
	if len(causes) < 2 {
		return []models.CauseCorrelation{}, nil
	}
	limit := len(causes)
	if limit > 5 {
		limit = 5
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -correlationWindow+1, 0)
	var labels []string
	for cursor := start; !cursor.After(now); cursor = cursor.AddDate(0, 1, 0) {
		labels = append(labels, cursor.Format("2006-01"))
	}

	series := make([][]float64, limit)
	for i := 0; i < limit; i++ {
		cf := f.WithoutDates()
		cf.Cause = causes[i].Cause
		cf.Start = &start
		counts, err := s.accidents.PeriodCounts(cf, "%Y-%m")
		if err != nil {
			return nil, err
		}
		series[i] = causeSeriesFor(counts, labels)
	}

	correlations := []models.CauseCorrelation{}
	for i := 0; i < limit; i++ {
		for j := i + 1; j < limit; j++ {
			r := stats.PearsonCorrelation(series[i], series[j])
			if math.Abs(r) >= 0.5 {
				correlations = append(correlations, models.CauseCorrelation{
					CauseA:   causes[i].Cause,
					CauseB:   causes[j].Cause,
					Strength: round2(r),
				})
			}
		}
	}
	return correlations, nil
}

// severityColors is the fixed dashboard color table.
var severityColors = map[string]string{
	"fatal":    "#dc2626",
	"serious":  "#ea580c",
	"high":     "#f59e0b",
	"moderate": "#eab308",
	"medium":   "#eab308",
	"minor":    "#22c55e",
	"low":      "#22c55e",
	"slight":   "#3b82f6",
}

const defaultSeverityColor = "#6b7280"

// severityWeights is the fixed table used for average severity scoring.
var severityWeights = map[string]float64{
	"fatal":    5,
	"serious":  4,
	"high":     3,
	"moderate": 2,
	"medium":   2,
	"minor":    1,
	"low":      1,
	"slight":   0.5,
}

func severityWeight(severity string) float64 {
	if w, ok := severityWeights[strings.ToLower(severity)]; ok {
		return w
	}
	return 1
}

func isHighSeverity(severity string) bool {
	switch strings.ToLower(severity) {
	case "fatal", "serious":
		return true
	}
	return false
}

// SeverityDistribution returns the detailed severity breakdown with the
// fixed color coding and the overall high-severity share.
func (s *StatsService) SeverityDistribution(f models.AccidentFilter, key string) (*models.SeverityDistribution, error) {
	v, err := s.cached(key, ttlSevDist, func() (interface{}, error) {
		buckets, err := s.accidents.GroupCount(f, "severity")
		if err != nil {
			return nil, err
		}

		total := 0
		for _, b := range buckets {
			total += b.Count
		}

		out := &models.SeverityDistribution{
			Distribution: make([]models.SeveritySlice, 0, len(buckets)),
			Total:        total,
		}
		highTotal := 0
		for _, b := range buckets {
			sev := b.Key
			if sev == "" {
				sev = "unknown"
			}
			if isHighSeverity(sev) {
				highTotal += b.Count
			}
			color := severityColors[strings.ToLower(sev)]
			if color == "" {
				color = defaultSeverityColor
			}
			var pct float64
			if total > 0 {
				pct = round1(float64(b.Count) / float64(total) * 100)
			}
			out.Distribution = append(out.Distribution, models.SeveritySlice{
				Severity:   sev,
				Label:      titleLabel(sev),
				Count:      b.Count,
				Percentage: pct,
				Color:      color,
			})
		}
		if total > 0 {
			out.HighSeverityPct = round1(float64(highTotal) / float64(total) * 100)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.SeverityDistribution), nil
}

// CauseAnalysis returns per-cause stats with severity mixes, average
// severity scores and cross-cause correlations.
func (s *StatsService) CauseAnalysis(f models.AccidentFilter, key string) (*models.CauseAnalysis, error) {
	v, err := s.cached(key, ttlCauseAnalysis, func() (interface{}, error) {
		buckets, err := s.accidents.GroupCount(f, "cause")
		if err != nil {
			return nil, err
		}

		total := 0
		for _, b := range buckets {
			total += b.Count
		}

		causes := make([]models.CauseStats, 0, len(buckets))
		for _, b := range buckets {
			if b.Key == "" {
				continue
			}
			if len(causes) >= 15 {
				break
			}

			sevCounts, err := s.accidents.SeverityCountsByCause(f, b.Key)
			if err != nil {
				return nil, err
			}
			var weighted float64
			for sev, count := range sevCounts {
				weighted += severityWeight(sev) * float64(count)
			}
			var avgScore float64
			if b.Count > 0 {
				avgScore = round2(weighted / float64(b.Count))
			}
			var pct float64
			if total > 0 {
				pct = round1(float64(b.Count) / float64(total) * 100)
			}

			causes = append(causes, models.CauseStats{
				Cause:             b.Key,
				Label:             titleLabel(b.Key),
				Count:             b.Count,
				Percentage:        pct,
				SeverityBreakdown: sevCounts,
				AvgSeverityScore:  avgScore,
			})
		}

		correlations, err := s.causeCorrelations(f, causes)
		if err != nil {
			return nil, err
		}

		return &models.CauseAnalysis{Causes: causes, Correlations: correlations, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CauseAnalysis), nil
}
