package models

import "time"

// Accident represents one official accident record. Rows in the accidents
// table are append-mostly: imports and confirmed citizen reports create
// them, and the statistics layer only ever reads them.
type Accident struct {
	ID          int        `json:"id"`
	OccurredAt  time.Time  `json:"occurred_at"`
	Severity    string     `json:"severity"`
	Cause       string     `json:"cause,omitempty"`
	Governorate string     `json:"governorate,omitempty"`
	Delegation  string     `json:"delegation,omitempty"`
	Source      string     `json:"source,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Accident sources.
const (
	SourceManual = "manual"
	SourceImport = "import"
	SourceReport = "report"
)

// HighSeverities lists the severity values counted as high severity,
// compared case-insensitively.
var HighSeverities = []string{"fatal", "serious"}
