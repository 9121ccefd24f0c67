package models

// LabelValue is the minimal label/value pair used by simple counters.
type LabelValue struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// BreakdownItem is one bucket of a category breakdown.
type BreakdownItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Breakdown is the common group-by-count result: parallel labels/values
// arrays plus the items list. Percentages is only populated for severity.
type Breakdown struct {
	Labels      []string        `json:"labels"`
	Values      []int           `json:"values"`
	Percentages []float64       `json:"percentages,omitempty"`
	Items       []BreakdownItem `json:"items"`
}

// TimeSeries is a bucketed count series in ascending period order.
type TimeSeries struct {
	Labels      []string `json:"labels"`
	Values      []int    `json:"values"`
	Granularity string   `json:"granularity"`
}

// TopEntry names the single most frequent value of a grouping, with its
// count and, for causes, its share of the filtered total.
type TopEntry struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct,omitempty"`
}

// KPISummary is the /kpis response body.
type KPISummary struct {
	Total            int      `json:"total"`
	YearToDate       int      `json:"yearToDate"`
	MonthToDate      int      `json:"monthToDate"`
	HighSeverityRate float64  `json:"highSeverityRate"`
	TopCause         TopEntry `json:"topCause"`
	TopGovernorate   TopEntry `json:"topGovernorate"`
	TopDelegation    TopEntry `json:"topDelegation"`
	AvgPerDay        float64  `json:"avgPerDay"`
	YoYChangePct     float64  `json:"yoyChangePct"`
}

// GovernorateSeries is one line of the governorate timeseries chart.
type GovernorateSeries struct {
	Label  string `json:"label"`
	Values []int  `json:"values"`
}

// GovernorateTimeseries is the by_governorate_timeseries response body.
type GovernorateTimeseries struct {
	Labels []string            `json:"labels"`
	Series []GovernorateSeries `json:"series"`
}

// SankeyLink connects two node indices with a flow value.
type SankeyLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// SankeyGraph is the cause -> severity -> governorate flow graph.
type SankeyGraph struct {
	Nodes []string     `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// PeriodStats summarizes one comparison period.
type PeriodStats struct {
	Period            string         `json:"period"`
	Count             int            `json:"count"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
}

// SeverityChange is the per-severity delta between two periods.
type SeverityChange struct {
	Current  int     `json:"current"`
	Previous int     `json:"previous"`
	Diff     int     `json:"diff"`
	Pct      float64 `json:"pct"`
}

// PeriodComparison is the /comparison response body.
type PeriodComparison struct {
	Current  PeriodStats `json:"current"`
	Previous PeriodStats `json:"previous"`
	Change   struct {
		CountDiff       int                       `json:"count_diff"`
		CountPct        float64                   `json:"count_pct"`
		SeverityChanges map[string]SeverityChange `json:"severity_changes"`
	} `json:"change"`
	YearAgo struct {
		Period    string  `json:"period"`
		Count     int     `json:"count"`
		ChangePct float64 `json:"change_pct"`
	} `json:"yearAgo"`
}

// CauseCount is a cause with its frequency.
type CauseCount struct {
	Cause string `json:"cause"`
	Count int    `json:"count"`
}

// PeakTime is an hour bucket with its frequency.
type PeakTime struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Hotspot is one ranked location in the hotspots response.
type Hotspot struct {
	Location      string       `json:"location"`
	Count         int          `json:"count"`
	SeverityScore float64      `json:"severity_score"`
	RiskLevel     string       `json:"risk_level"`
	TopCauses     []CauseCount `json:"top_causes"`
	PeakTimes     []PeakTime   `json:"peak_times"`
}

// SeveritySlice is one entry of the severity distribution.
type SeveritySlice struct {
	Severity   string  `json:"severity"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// SeverityDistribution is the /severity/distribution response body.
type SeverityDistribution struct {
	Distribution    []SeveritySlice `json:"distribution"`
	Total           int             `json:"total"`
	HighSeverityPct float64         `json:"highSeverityPct"`
}

// CauseStats is one analyzed cause with its severity mix.
type CauseStats struct {
	Cause             string         `json:"cause"`
	Label             string         `json:"label"`
	Count             int            `json:"count"`
	Percentage        float64        `json:"percentage"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
	AvgSeverityScore  float64        `json:"avg_severity_score"`
}

// CauseCorrelation reports how strongly two causes' monthly series move
// together.
type CauseCorrelation struct {
	CauseA   string  `json:"cause_a"`
	CauseB   string  `json:"cause_b"`
	Strength float64 `json:"correlation_strength"`
}

// CauseAnalysis is the /causes/analysis response body.
type CauseAnalysis struct {
	Causes       []CauseStats       `json:"causes"`
	Correlations []CauseCorrelation `json:"correlations"`
	Total        int                `json:"total"`
}

// ReportedVsConfirmed is the reports comparison series.
type ReportedVsConfirmed struct {
	Labels      []string `json:"labels"`
	Reported    []int    `json:"reported"`
	Confirmed   []int    `json:"confirmed"`
	Granularity string   `json:"granularity"`
}

// DashboardStats is the quick dashboard widget payload.
type DashboardStats struct {
	TotalAccidents int    `json:"total_accidents"`
	ReportsCount   int    `json:"reports_count"`
	ImportsToday   int    `json:"imports_today"`
	RecentCount    int    `json:"recent_count"`
	Timestamp      string `json:"timestamp"`
}

// QuickStats is the /quick-stats response body.
type QuickStats struct {
	TotalAccidents      int     `json:"total_accidents"`
	HighSeverityCount   int     `json:"high_severity_count"`
	HighSeverityPercent float64 `json:"high_severity_percent"`
	TopCause            string  `json:"top_cause"`
	TopCauseCount       int     `json:"top_cause_count"`
	MostAffectedArea    string  `json:"most_affected_area"`
	MostAffectedCount   int     `json:"most_affected_count"`
	Trend               string  `json:"trend"`
	TrendPercent        float64 `json:"trend_percent"`
	Period              string  `json:"period"`
	Governorate         string  `json:"governorate,omitempty"`
}
