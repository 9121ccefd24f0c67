package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
	"github.com/roadsafety-tn/accidents-backend-go/internal/weather"
)

// RiskService runs the predictive analytics: governorate risk scoring,
// next-week forecasting and weather-adjusted risk. Its methods never
// return an error to the caller. When the store or the weather provider
// fails it logs the failure and serves a fixed fallback payload flagged
// as degraded, so the dashboard keeps rendering.
type RiskService struct {
	accidents *repository.AccidentRepository
	weather   weather.Provider
	logger    *zap.Logger
	now       func() time.Time
}

func NewRiskService(accidents *repository.AccidentRepository, provider weather.Provider, logger *zap.Logger) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{accidents: accidents, weather: provider, logger: logger, now: time.Now}
}

// riskSeverityWeights drives the severity component of the zone score.
var riskSeverityWeights = map[string]int{
	"fatal":    10,
	"severe":   5,
	"serious":  5,
	"moderate": 2,
	"minor":    1,
}

// dowMultipliers adjusts day-of-week baselines; 0=Monday.
var dowMultipliers = [7]float64{0.92, 0.95, 0.96, 0.98, 1.20, 1.35, 1.10}

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// fixedRiskFactors is the static factor table shown alongside predictions.
var fixedRiskFactors = map[string]float64{
	"weekend_effect":  1.45,
	"night_driving":   1.32,
	"rain_conditions": 1.65,
	"rush_hour":       1.28,
	"holiday_periods": 1.55,
}

// zoneRiskLevel classifies a composite 0-100 score.
func zoneRiskLevel(score int) string {
	switch {
	case score < 30:
		return "low"
	case score < 60:
		return "medium"
	default:
		return "high"
	}
}

// GovernorateRiskScore computes the 0-100 composite score for one
// governorate: severity-weighted history capped at 50, volume capped at
// 30 and 30-day recency capped at 20, scaled by the recent trend.
func (s *RiskService) GovernorateRiskScore(governorate string, total int) (int, error) {
	if total == 0 {
		return 0, nil
	}

	sevCounts, err := s.accidents.SeverityCountsFor(governorate)
	if err != nil {
		return 0, err
	}
	weighted := 0
	for sev, count := range sevCounts {
		w, ok := riskSeverityWeights[sev]
		if !ok {
			w = 1
		}
		weighted += w * count
	}

	now := s.now().UTC()
	recent, err := s.accidents.CountForGovernorate(governorate, now.AddDate(0, 0, -30), now)
	if err != nil {
		return 0, err
	}
	previous, err := s.accidents.CountForGovernorate(governorate, now.AddDate(0, 0, -60), now.AddDate(0, 0, -30))
	if err != nil {
		return 0, err
	}

	multiplier := 1.0
	if previous > 0 {
		ratio := float64(recent) / float64(previous)
		switch {
		case ratio > 1.5:
			multiplier = 1.5
		case ratio > 1.2:
			multiplier = 1.25
		case ratio < 0.8:
			multiplier = 0.8
		}
	}

	severityScore := math.Min(float64(weighted)/10, 50)
	volumeScore := math.Min(float64(total)/100, 30)
	recentScore := math.Min(float64(recent)*2, 20)

	score := int(math.Round((severityScore + volumeScore + recentScore) * multiplier))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score, nil
}

// RiskZones scores every governorate present in the store, sorted by
// score descending. Store failure yields the fixed fallback set.
func (s *RiskService) RiskZones() *models.RiskZonesResult {
	zones, err := s.computeRiskZones()
	if err != nil {
		s.logger.Warn("risk zones degraded to fallback", zap.Error(err))
		fallback := fallbackRiskZones()
		return &models.RiskZonesResult{
			Zones:             fallback,
			HighRiskZones:     fallback,
			HighRiskCount:     1,
			TotalGovernorates: len(fallback),
			Degraded:          true,
			Error:             err.Error(),
		}
	}
	if len(zones) == 0 {
		zones = fallbackRiskZones()
	}

	byCount := make([]models.RiskZone, len(zones))
	copy(byCount, zones)
	sort.SliceStable(byCount, func(i, j int) bool { return byCount[i].AccidentCount > byCount[j].AccidentCount })
	top := byCount
	if len(top) > 5 {
		top = top[:5]
	}

	highCount := 0
	for _, z := range zones {
		if z.RiskLevel == "high" {
			highCount++
		}
	}

	return &models.RiskZonesResult{
		Zones:             zones,
		HighRiskZones:     top,
		HighRiskCount:     highCount,
		TotalGovernorates: len(zones),
	}
}

func (s *RiskService) computeRiskZones() ([]models.RiskZone, error) {
	governorates, err := s.accidents.GovernorateCounts()
	if err != nil {
		return nil, err
	}

	zones := make([]models.RiskZone, 0, len(governorates))
	for _, gov := range governorates {
		if gov.Key == "" {
			continue
		}
		score, err := s.GovernorateRiskScore(gov.Key, gov.Count)
		if err != nil {
			return nil, err
		}
		zones = append(zones, models.RiskZone{
			Governorate:   gov.Key,
			AccidentCount: gov.Count,
			RiskScore:     score,
			RiskLevel:     zoneRiskLevel(score),
		})
	}
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].RiskScore > zones[j].RiskScore })
	return zones, nil
}

func fallbackRiskZones() []models.RiskZone {
	return []models.RiskZone{
		{Governorate: "Tunis", AccidentCount: 45, RiskScore: 72, RiskLevel: "high"},
		{Governorate: "Sfax", AccidentCount: 32, RiskScore: 58, RiskLevel: "medium"},
		{Governorate: "Sousse", AccidentCount: 28, RiskScore: 52, RiskLevel: "medium"},
		{Governorate: "Ariana", AccidentCount: 25, RiskScore: 48, RiskLevel: "medium"},
		{Governorate: "Nabeul", AccidentCount: 22, RiskScore: 45, RiskLevel: "medium"},
	}
}

// dayOfWeekPatterns returns per-weekday risk baselines (0=Monday)
// normalized so the weekly average lands on 50; absent days default
// to 50.
func (s *RiskService) dayOfWeekPatterns() ([7]float64, error) {
	var patterns [7]float64
	counts, err := s.accidents.WeekdayCounts(s.now().UTC().AddDate(0, 0, -365))
	if err != nil {
		return patterns, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	for i := range patterns {
		patterns[i] = 50
	}
	if total == 0 {
		return patterns, nil
	}

	avgPerDay := float64(total) / 7
	for sundayFirst, count := range counts {
		idx := models.WeekdayDisplayIndex(sundayFirst)
		score := float64(count) / avgPerDay * 50
		patterns[idx] = math.Min(100, math.Max(0, score))
	}
	return patterns, nil
}

// dayRiskScore combines the day's historical baseline with day-of-week,
// seasonal, month-timing and weather adjustments; 0-100.
func dayRiskScore(date time.Time, baseline, weatherFactor float64) int {
	dow := int(date.Weekday()+6) % 7 // Monday first
	score := baseline * dowMultipliers[dow]

	switch date.Month() {
	case time.July, time.August:
		score += 8
	case time.December, time.January:
		score += 10
	case time.March, time.April:
		score += 5
	}

	switch day := date.Day(); {
	case day >= 1 && day <= 5:
		score += 4
	case day >= 23:
		score += 6
	case day >= 10 && day <= 15:
		score += 3
	}

	score += (weatherFactor - 1.0) * 25

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return int(score)
}

func predictionRiskLevel(score int) string {
	switch {
	case score > 70:
		return "high"
	case score > 40:
		return "medium"
	default:
		return "low"
	}
}

// averageDailyAccidents is the 90-day daily mean, floored at 1.
func (s *RiskService) averageDailyAccidents() (float64, error) {
	total, err := s.accidents.CountSince(models.AccidentFilter{}, s.now().UTC().AddDate(0, 0, -90))
	if err != nil {
		return 0, err
	}
	avg := float64(total) / 90
	if avg < 1 {
		avg = 1
	}
	return avg, nil
}

// Predictions builds the full predictive payload. Any failure degrades to
// the static fallback rather than erroring.
func (s *RiskService) Predictions() *models.Predictions {
	weekly, err := s.weeklyPredictions()
	if err != nil {
		s.logger.Warn("predictions degraded to fallback", zap.Error(err))
		return s.fallbackPredictions(err)
	}

	times, err := s.highRiskTimes()
	if err != nil {
		s.logger.Warn("predictions degraded to fallback", zap.Error(err))
		return s.fallbackPredictions(err)
	}
	days, err := s.highRiskDays()
	if err != nil {
		s.logger.Warn("predictions degraded to fallback", zap.Error(err))
		return s.fallbackPredictions(err)
	}
	causes, err := s.causePredictions()
	if err != nil {
		s.logger.Warn("predictions degraded to fallback", zap.Error(err))
		return s.fallbackPredictions(err)
	}

	return &models.Predictions{
		WeeklyPredictions: weekly,
		HighRiskTimes:     times,
		HighRiskDays:      days,
		CausePredictions:  causes,
		RiskFactors:       fixedRiskFactors,
	}
}

func (s *RiskService) weeklyPredictions() ([]models.DayPrediction, error) {
	patterns, err := s.dayOfWeekPatterns()
	if err != nil {
		return nil, err
	}
	avgDaily, err := s.averageDailyAccidents()
	if err != nil {
		return nil, err
	}

	// The weather forecast is optional context. A provider outage means
	// neutral weather, not a degraded payload.
	var forecast []weather.Day
	if s.weather != nil {
		forecast, err = s.weather.Forecast("Tunis", 7)
		if err != nil {
			s.logger.Warn("weather forecast unavailable, assuming neutral conditions", zap.Error(err))
			forecast = nil
		}
	}

	today := s.now().UTC()
	baseCount := math.Min(8, math.Max(3, avgDaily*0.15))

	predictions := make([]models.DayPrediction, 0, 7)
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i)
		dow := int(date.Weekday()+6) % 7

		weatherFactor := 1.0
		weatherDesc := "Clear"
		var tempMax float64
		if i < len(forecast) {
			weatherFactor = forecast[i].RiskFactor
			if forecast[i].Description != "" {
				weatherDesc = forecast[i].Description
			}
			tempMax = forecast[i].TemperatureMax
		}

		score := dayRiskScore(date, patterns[dow], weatherFactor)
		modifier := 0.7 + float64(score)/100*0.6

		predictions = append(predictions, models.DayPrediction{
			Date:           date.Format("2006-01-02"),
			DayName:        dayNames[dow],
			Weather:        weatherDesc,
			TemperatureMax: tempMax,
			PredictedRisk:  score,
			PredictedCount: int(baseCount * modifier),
			RiskLevel:      predictionRiskLevel(score),
			Confidence:     math.Min(0.92, 0.75+0.17*(1-float64(i)/7)),
		})
	}
	return predictions, nil
}

// highRiskTimes flags hours whose accident rate runs more than 30% above
// the hourly average, keeping the five busiest.
func (s *RiskService) highRiskTimes() ([]models.RiskTime, error) {
	hourly, err := s.accidents.HourCounts()
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range hourly {
		total += c
	}
	avgPerHour := float64(total) / 24
	if total == 0 {
		avgPerHour = 1
	}

	times := make([]models.RiskTime, 0)
	for hour := 0; hour < 24; hour++ {
		count, ok := hourly[hour]
		if !ok {
			continue
		}
		ratio := float64(count) / avgPerHour
		if ratio <= 1.3 {
			continue
		}
		level := "Medium"
		if ratio > 1.5 {
			level = "High"
		}
		times = append(times, models.RiskTime{
			Hour:        hour,
			DisplayTime: fmt.Sprintf("%02d:00 - %02d:00", hour, (hour+1)%24),
			Count:       count,
			RiskLevel:   level,
			RiskRatio:   math.Round(ratio*100) / 100,
		})
	}

	sort.SliceStable(times, func(i, j int) bool { return times[i].Count > times[j].Count })
	if len(times) > 5 {
		times = times[:5]
	}
	return times, nil
}

func (s *RiskService) highRiskDays() ([]models.RiskDay, error) {
	patterns, err := s.dayOfWeekPatterns()
	if err != nil {
		return nil, err
	}

	days := make([]models.RiskDay, 0, 7)
	for i, score := range patterns {
		level := "low"
		if score > 65 {
			level = "high"
		} else if score > 45 {
			level = "medium"
		}
		days = append(days, models.RiskDay{
			Day:       i,
			DayName:   dayNames[i],
			RiskScore: int(math.Round(score)),
			RiskLevel: level,
		})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].RiskScore > days[j].RiskScore })
	return days, nil
}

// causePredictions ranks the last six months of causes by share.
func (s *RiskService) causePredictions() ([]models.CausePrediction, error) {
	causes, err := s.accidents.CauseCountsSince(s.now().UTC().AddDate(0, 0, -180), 10)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range causes {
		total += c.Count
	}

	out := make([]models.CausePrediction, 0, len(causes))
	for _, c := range causes {
		var pct float64
		if total > 0 {
			pct = round1(float64(c.Count) / float64(total) * 100)
		}
		likelihood := "low"
		switch {
		case pct > 20:
			likelihood = "very_high"
		case pct > 12:
			likelihood = "high"
		case pct > 6:
			likelihood = "medium"
		}
		out = append(out, models.CausePrediction{
			Cause:      titleLabel(c.Key),
			Count:      c.Count,
			Percentage: pct,
			Likelihood: likelihood,
		})
	}
	return out, nil
}

// fallbackPredictions is served when the store is unreachable: a static
// but plausible week so the dashboard never blanks out.
func (s *RiskService) fallbackPredictions(cause error) *models.Predictions {
	today := s.now().UTC()
	weekly := make([]models.DayPrediction, 0, 7)
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i)
		name := dayNames[i]
		level := "low"
		switch name {
		case "Friday", "Saturday":
			level = "high"
		case "Thursday", "Sunday":
			level = "medium"
		}
		weekly = append(weekly, models.DayPrediction{
			Date:           date.Format("2006-01-02"),
			DayName:        name,
			Weather:        "Clear",
			PredictedCount: i + 3,
			RiskLevel:      level,
			Confidence:     0.70,
		})
	}

	return &models.Predictions{
		WeeklyPredictions: weekly,
		HighRiskTimes: []models.RiskTime{
			{Hour: 17, DisplayTime: "17:00 - 20:00", RiskLevel: "High"},
			{Hour: 7, DisplayTime: "07:00 - 09:00", RiskLevel: "Medium"},
			{Hour: 22, DisplayTime: "22:00 - 02:00", RiskLevel: "High"},
		},
		HighRiskDays:     []models.RiskDay{},
		CausePredictions: []models.CausePrediction{},
		RiskFactors:      fixedRiskFactors,
		Degraded:         true,
		Error:            cause.Error(),
	}
}

// conditionGroups maps detailed descriptions onto the dashboard's icon
// vocabulary.
var conditionGroups = map[string]string{
	"Clear sky":                     "Clear",
	"Mainly clear":                  "Clear",
	"Partly cloudy":                 "Partly Cloudy",
	"Overcast":                      "Cloudy",
	"Fog":                           "Fog",
	"Depositing rime fog":           "Fog",
	"Light drizzle":                 "Drizzle",
	"Moderate drizzle":              "Drizzle",
	"Dense drizzle":                 "Drizzle",
	"Slight rain":                   "Rain",
	"Moderate rain":                 "Rain",
	"Heavy rain":                    "Heavy Rain",
	"Slight snow":                   "Snow",
	"Moderate snow":                 "Snow",
	"Heavy snow":                    "Snow",
	"Slight rain showers":           "Showers",
	"Moderate rain showers":         "Showers",
	"Violent rain showers":          "Heavy Rain",
	"Thunderstorm":                  "Thunderstorm",
	"Thunderstorm with slight hail": "Thunderstorm",
	"Thunderstorm with heavy hail":  "Thunderstorm",
}

// Weather returns current conditions plus a derived driving risk score
// for one governorate. Provider failure yields a neutral fallback.
func (s *RiskService) Weather(governorate string) *models.WeatherReport {
	if governorate == "" {
		governorate = "Tunis"
	}

	var current *weather.Current
	var err error
	if s.weather != nil {
		current, err = s.weather.CurrentWeather(governorate)
	} else {
		err = fmt.Errorf("no weather provider configured")
	}
	if err != nil || current == nil {
		if err != nil {
			s.logger.Warn("weather degraded to fallback",
				zap.String("governorate", governorate), zap.Error(err))
		}
		return fallbackWeather(governorate, err, s.now().UTC())
	}

	conditions := conditionGroups[current.Description]
	if conditions == "" {
		conditions = "Clear"
	}

	factor := current.RiskFactor
	if factor == 0 {
		factor = 1.0
	}
	if current.RainChance > 70 {
		factor *= 1.3
	} else if current.RainChance > 40 {
		factor *= 1.15
	}
	if current.Humidity > 90 {
		factor *= 1.1
	}
	if current.WindSpeed > 50 {
		factor *= 1.4
	} else if current.WindSpeed > 30 {
		factor *= 1.2
	}
	score := int(20 * factor * 1.5)
	if score > 100 {
		score = 100
	}

	factors := []string{}
	switch current.WeatherCode {
	case 45, 48:
		factors = append(factors, "Reduced visibility (fog)")
	}
	if current.RainChance > 60 {
		factors = append(factors, fmt.Sprintf("%d%% rain probability", current.RainChance))
	}
	switch current.WeatherCode {
	case 61, 63, 65, 80, 81, 82:
		factors = append(factors, "Wet road conditions")
	}
	switch current.WeatherCode {
	case 65, 82:
		factors = append(factors, "Hydroplaning risk")
	case 71, 73, 75:
		factors = append(factors, "Slippery conditions")
	case 95, 96, 99:
		factors = append(factors, "Severe thunderstorm")
	}
	if current.WindSpeed > 40 {
		factors = append(factors, fmt.Sprintf("High winds (%d km/h)", int(current.WindSpeed)))
	}
	if current.Humidity > 85 {
		factors = append(factors, "High humidity")
	}
	if !current.IsDay {
		factors = append(factors, "Night driving")
	}

	detail := current.Description
	if detail == "" {
		detail = conditions
	}

	return &models.WeatherReport{
		Governorate:      governorate,
		Temperature:      int(math.Round(current.Temperature)),
		FeelsLike:        int(math.Round(current.FeelsLike)),
		Conditions:       conditions,
		ConditionsDetail: detail,
		Humidity:         current.Humidity,
		WindSpeed:        int(math.Round(current.WindSpeed)),
		Precipitation:    math.Round(current.Precipitation*10) / 10,
		RainChance:       current.RainChance,
		IsDay:            current.IsDay,
		RiskScore:        score,
		RiskFactors:      factors,
		LastUpdated:      s.now().UTC().Format("15:04:05"),
	}
}

func fallbackWeather(governorate string, cause error, now time.Time) *models.WeatherReport {
	report := &models.WeatherReport{
		Governorate:      governorate,
		Temperature:      22,
		FeelsLike:        21,
		Conditions:       "Clear",
		ConditionsDetail: "Unable to fetch",
		Humidity:         60,
		WindSpeed:        12,
		Precipitation:    0,
		RainChance:       0,
		IsDay:            true,
		RiskScore:        25,
		RiskFactors:      []string{},
		LastUpdated:      now.Format("15:04:05"),
		Degraded:         true,
	}
	if cause != nil {
		report.Error = cause.Error()
	}
	return report
}
