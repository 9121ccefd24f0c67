package models

// RiskZone is one governorate with its composite 0-100 risk score.
type RiskZone struct {
	Governorate   string `json:"governorate"`
	AccidentCount int    `json:"accident_count"`
	RiskScore     int    `json:"risk_score"`
	RiskLevel     string `json:"risk_level"`
}

// RiskZonesResult is the /risk-zones response body. Degraded is set when
// the payload is the hardcoded fallback rather than computed data.
type RiskZonesResult struct {
	Zones             []RiskZone `json:"zones"`
	HighRiskZones     []RiskZone `json:"high_risk_zones"`
	HighRiskCount     int        `json:"high_risk_count"`
	TotalGovernorates int        `json:"total_governorates"`
	Degraded          bool       `json:"degraded,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// DayPrediction is a single day of the next-week forecast.
type DayPrediction struct {
	Date           string  `json:"date"`
	DayName        string  `json:"day_name"`
	Weather        string  `json:"weather"`
	TemperatureMax float64 `json:"temperature_max,omitempty"`
	PredictedRisk  int     `json:"predicted_risk"`
	PredictedCount int     `json:"predicted_count"`
	RiskLevel      string  `json:"risk_level"`
	Confidence     float64 `json:"confidence"`
}

// RiskTime is an hour window whose accident rate is above average.
type RiskTime struct {
	Hour        int     `json:"hour"`
	DisplayTime string  `json:"display_time"`
	Count       int     `json:"count"`
	RiskLevel   string  `json:"risk_level"`
	RiskRatio   float64 `json:"risk_ratio"`
}

// RiskDay is a day of week with its normalized risk score.
type RiskDay struct {
	Day       int    `json:"day"`
	DayName   string `json:"day_name"`
	RiskScore int    `json:"risk_score"`
	RiskLevel string `json:"risk_level"`
}

// CausePrediction is a likely accident cause with its likelihood class.
type CausePrediction struct {
	Cause      string  `json:"cause"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Likelihood string  `json:"likelihood"`
}

// Predictions is the /predictions response body.
type Predictions struct {
	WeeklyPredictions []DayPrediction    `json:"weekly_predictions"`
	HighRiskTimes     []RiskTime         `json:"high_risk_times"`
	HighRiskDays      []RiskDay          `json:"high_risk_days"`
	CausePredictions  []CausePrediction  `json:"cause_predictions"`
	RiskFactors       map[string]float64 `json:"risk_factors"`
	Degraded          bool               `json:"degraded,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// WeatherReport is the /weather response body: current conditions plus the
// derived risk score for the dashboard.
type WeatherReport struct {
	Governorate     string   `json:"governorate"`
	Temperature     int      `json:"temperature"`
	FeelsLike       int      `json:"feels_like"`
	Conditions      string   `json:"conditions"`
	ConditionsDetail string  `json:"conditions_detail"`
	Humidity        int      `json:"humidity"`
	WindSpeed       int      `json:"wind_speed"`
	Precipitation   float64  `json:"precipitation"`
	RainChance      int      `json:"rain_chance"`
	IsDay           bool     `json:"is_day"`
	RiskScore       int      `json:"risk_score"`
	RiskFactors     []string `json:"risk_factors"`
	LastUpdated     string   `json:"last_updated"`
	Degraded        bool     `json:"degraded,omitempty"`
	Error           string   `json:"error,omitempty"`
}
