package models

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// AccidentFilter holds the normalized query constraints shared by every
// statistics endpoint. A nil Start/End or empty string means the filter is
// absent. Built once per request and not modified afterwards.
type AccidentFilter struct {
	Start       *time.Time
	End         *time.Time
	Governorate string
	Delegation  string
	Severity    string
	Cause       string
	Source      string
}

// dateFormats are the fallback layouts tried after RFC 3339.
var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
}

// ParseDate parses a date or date-time string, trying ISO-8601 first and
// then a small set of common fallbacks. The second return value reports
// whether parsing succeeded; callers drop the filter on failure rather
// than rejecting the request.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAccidentFilter builds an AccidentFilter from raw query values.
// Malformed dates degrade to "unfiltered" instead of producing an error.
func ParseAccidentFilter(get func(string) string) AccidentFilter {
	var f AccidentFilter
	if t, ok := ParseDate(get("start")); ok {
		f.Start = &t
	}
	if t, ok := ParseDate(get("end")); ok {
		f.End = &t
	}
	f.Governorate = get("governorate")
	f.Delegation = get("delegation")
	f.Severity = get("severity")
	f.Cause = get("cause")
	f.Source = get("source")
	return f
}

// WithoutDates returns a copy of the filter with the date range removed.
// Used for year-to-date and month-to-date KPIs, which keep the categorical
// filters but use calendar boundaries instead of the requested range.
func (f AccidentFilter) WithoutDates() AccidentFilter {
	f.Start = nil
	f.End = nil
	return f
}

// CacheKey builds the deterministic cache key for an endpoint and the raw
// query parameters of the request. Pairs are sorted so the key does not
// depend on parameter order.
func CacheKey(endpoint string, params url.Values) string {
	pairs := make([]string, 0, len(params))
	for k, vs := range params {
		for _, v := range vs {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)
	return endpoint + ":" + strings.Join(pairs, "&")
}
