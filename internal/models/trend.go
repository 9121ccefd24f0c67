package models

// TrendAnalysis is the /trends/analysis response body. MovingAverage and
// ChangeRate use pointers so that undefined leading entries serialize as
// JSON null rather than zero.
type TrendAnalysis struct {
	Periods       []string   `json:"periods"`
	Values        []int      `json:"values"`
	MovingAverage []*float64 `json:"movingAverage"`
	ChangeRate    []*float64 `json:"changeRate"`
	Trend         string     `json:"trend"`
	Forecast      []int      `json:"forecast"`
	Granularity   string     `json:"granularity"`
}

// Trend classifications.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)
