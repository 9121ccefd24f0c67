package service

import (
	"strconv"
	"time"

	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
)

const (
	defaultHotspotLimit    = 10
	defaultHotspotMinCount = 5
)

// HotspotRiskLevel classifies a zone by its severity score (percentage of
// high-severity accidents) and accident count.
func HotspotRiskLevel(severityScore float64, count int) string {
	switch {
	case severityScore >= 40 && count >= 20:
		return "critical"
	case severityScore >= 25 || count >= 30:
		return "high"
	case severityScore >= 10 || count >= 15:
		return "medium"
	default:
		return "low"
	}
}

// Hotspots ranks accident-dense zones with severity scoring, dominant
// causes and peak hours.
func (s *StatsService) Hotspots(f models.AccidentFilter, limit, minCount int, key string) ([]models.Hotspot, error) {
	limit = clamp(limit, 1, 50)
	if minCount < 1 {
		minCount = 1
	}

	v, err := s.cached(key, ttlHotspots, func() (interface{}, error) {
		zones, err := s.accidents.ZoneCounts(f, minCount, limit)
		if err != nil {
			return nil, err
		}

		hotspots := make([]models.Hotspot, 0, len(zones))
		for _, zone := range zones {
			if zone.Key == "" {
				continue
			}

			high, err := s.accidents.ZoneHighSeverityCount(f, zone.Key)
			if err != nil {
				return nil, err
			}
			var score float64
			if zone.Count > 0 {
				score = round1(float64(high) / float64(zone.Count) * 100)
			}

			causes, err := s.accidents.ZoneTopCauses(f, zone.Key, 3)
			if err != nil {
				return nil, err
			}
			topCauses := make([]models.CauseCount, 0, len(causes))
			for _, c := range causes {
				topCauses = append(topCauses, models.CauseCount{Cause: c.Key, Count: c.Count})
			}

			hours, err := s.accidents.ZonePeakHours(f, zone.Key, 3)
			if err != nil {
				return nil, err
			}
			peaks := make([]models.PeakTime, 0, len(hours))
			for _, h := range hours {
				hour, err := strconv.Atoi(h.Key)
				if err != nil {
					continue
				}
				peaks = append(peaks, models.PeakTime{Hour: hour, Count: h.Count})
			}

			hotspots = append(hotspots, models.Hotspot{
				Location:      zone.Key,
				Count:         zone.Count,
				SeverityScore: score,
				RiskLevel:     HotspotRiskLevel(score, zone.Count),
				TopCauses:     topCauses,
				PeakTimes:     peaks,
			})
		}
		return hotspots, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Hotspot), nil
}

// comparisonBounds resolves the calendar bounds of the current, previous
// and year-ago periods for a comparison granularity.
func comparisonBounds(now time.Time, period string) (label string, curStart, prevStart, prevEnd, yearAgoStart, yearAgoEnd time.Time) {
	switch period {
	case "quarter":
		qMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
		curStart = time.Date(now.Year(), qMonth, 1, 0, 0, 0, 0, time.UTC)
		prevStart = curStart.AddDate(0, -3, 0)
		yearAgoStart = curStart.AddDate(-1, 0, 0)
		yearAgoEnd = yearAgoStart.AddDate(0, 3, 0).Add(-time.Second)
		label = "quarter"
	case "year":
		curStart = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		prevStart = curStart.AddDate(-1, 0, 0)
		yearAgoStart = prevStart
		yearAgoEnd = curStart.Add(-time.Second)
		label = "year"
	default:
		curStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		prevStart = curStart.AddDate(0, -1, 0)
		yearAgoStart = curStart.AddDate(-1, 0, 0)
		yearAgoEnd = yearAgoStart.AddDate(0, 1, 0).Add(-time.Second)
		label = "month"
	}
	prevEnd = curStart.Add(-time.Second)
	return label, curStart, prevStart, prevEnd, yearAgoStart, yearAgoEnd
}

// Comparison compares the current calendar period against the previous one
// and against the same period a year ago.
func (s *StatsService) Comparison(f models.AccidentFilter, period, key string) (*models.PeriodComparison, error) {
	v, err := s.cached(key, ttlComparison, func() (interface{}, error) {
		now := s.now().UTC()
		label, curStart, prevStart, prevEnd, yearAgoStart, yearAgoEnd := comparisonBounds(now, period)

		base := f.WithoutDates()

		curCount, err := s.accidents.CountRange(base, curStart, now)
		if err != nil {
			return nil, err
		}
		prevCount, err := s.accidents.CountRange(base, prevStart, prevEnd)
		if err != nil {
			return nil, err
		}
		yearAgoCount, err := s.accidents.CountRange(base, yearAgoStart, yearAgoEnd)
		if err != nil {
			return nil, err
		}

		curSev, err := s.accidents.SeverityBreakdownRange(base, curStart, now)
		if err != nil {
			return nil, err
		}
		prevSev, err := s.accidents.SeverityBreakdownRange(base, prevStart, prevEnd)
		if err != nil {
			return nil, err
		}

		out := &models.PeriodComparison{
			Current: models.PeriodStats{
				Period:            "current_" + label,
				Count:             curCount,
				SeverityBreakdown: curSev,
			},
			Previous: models.PeriodStats{
				Period:            "previous_" + label,
				Count:             prevCount,
				SeverityBreakdown: prevSev,
			},
		}
		out.Change.CountDiff = curCount - prevCount
		out.Change.CountPct = PercentChange(curCount, prevCount)
		out.Change.SeverityChanges = severityChanges(curSev, prevSev)

		out.YearAgo.Period = "year_ago_" + label
		out.YearAgo.Count = yearAgoCount
		out.YearAgo.ChangePct = PercentChange(curCount, yearAgoCount)

		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PeriodComparison), nil
}

// severityChanges diffs two severity breakdowns over the union of keys.
func severityChanges(current, previous map[string]int) map[string]models.SeverityChange {
	keys := make(map[string]bool, len(current)+len(previous))
	for k := range current {
		keys[k] = true
	}
	for k := range previous {
		keys[k] = true
	}

	changes := make(map[string]models.SeverityChange, len(keys))
	for k := range keys {
		cur := current[k]
		prev := previous[k]
		changes[k] = models.SeverityChange{
			Current:  cur,
			Previous: prev,
			Diff:     cur - prev,
			Pct:      PercentChange(cur, prev),
		}
	}
	return changes
}
