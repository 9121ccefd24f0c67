package models

// HourWeekdayMatrix is the 24x7 accident count heatmap. Rows are hours
// 0-23; columns are weekdays in Monday-first display order. The store
// reports weekdays with 0=Sunday, converted on the way out.
type HourWeekdayMatrix struct {
	Hours    []int    `json:"hours"`
	Weekdays []string `json:"weekdays"`
	Matrix   [][]int  `json:"matrix"`
}

// DisplayWeekdays is the Monday-first column order of the heatmap.
var DisplayWeekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayDisplayIndex converts a 0=Sunday weekday number (SQLite
// strftime('%w') convention) into the Monday-first column index.
func WeekdayDisplayIndex(sundayFirst int) int {
	return ((sundayFirst-1)%7 + 7) % 7
}
