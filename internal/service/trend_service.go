package service

import (
	"time"

	"github.com/roadsafety-tn/accidents-backend-go/internal/cache"
	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
	"github.com/roadsafety-tn/accidents-backend-go/internal/stats"
)

const ttlTrends = 60 * time.Second

// Forecast length matches the dashboard's three projected buckets.
const trendForecastPoints = 3

// TrendService computes the moving-average, change-rate and forecast
// analysis over bucketed accident counts.
type TrendService struct {
	accidents *repository.AccidentRepository
	cache     cache.Cache
}

func NewTrendService(accidents *repository.AccidentRepository, c cache.Cache) *TrendService {
	return &TrendService{accidents: accidents, cache: c}
}

// Analysis buckets the filtered history at the requested granularity and
// derives trend statistics plus a three-point linear forecast over the
// last periodsBack buckets. periodsBack <= 0 keeps the whole series.
func (s *TrendService) Analysis(f models.AccidentFilter, granularity string, periodsBack int, key string) (*models.TrendAnalysis, error) {
	if s.cache != nil && key != "" {
		if v, ok := s.cache.Get(key); ok {
			return v.(*models.TrendAnalysis), nil
		}
	}

	format, gran := GranularityFormat(granularity)
	counts, err := s.accidents.PeriodCounts(f, format)
	if err != nil {
		return nil, err
	}

	periods := make([]string, 0, len(counts))
	values := make([]int, 0, len(counts))
	for _, c := range counts {
		periods = append(periods, c.Period)
		values = append(values, c.Count)
	}
	if periodsBack > 0 && len(values) > periodsBack {
		periods = periods[len(periods)-periodsBack:]
		values = values[len(values)-periodsBack:]
	}

	out := &models.TrendAnalysis{
		Periods:       periods,
		Values:        values,
		MovingAverage: stats.MovingAverage(values),
		ChangeRate:    stats.ChangeRates(values),
		Trend:         stats.ClassifyTrend(values),
		Forecast:      stats.LinearForecast(values, trendForecastPoints),
		Granularity:   gran,
	}

	if s.cache != nil && key != "" {
		s.cache.Set(key, out, ttlTrends)
	}
	return out, nil
}
