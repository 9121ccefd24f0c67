package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/roadsafety-tn/accidents-backend-go/internal/models"
	"github.com/roadsafety-tn/accidents-backend-go/internal/service"
	"github.com/roadsafety-tn/accidents-backend-go/pkg/response"
)

// StatsHandler exposes the aggregation endpoints
type StatsHandler struct {
	stats  *service.StatsService
	trends *service.TrendService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService, trends *service.TrendService) *StatsHandler {
	return &StatsHandler{stats: stats, trends: trends}
}

// filterAndKey parses the shared filter params and derives the cache key
// for this endpoint from the full (raw) query string.
func filterAndKey(c *gin.Context, endpoint string) (models.AccidentFilter, string) {
	f := models.ParseAccidentFilter(c.Query)
	return f, models.CacheKey(endpoint, c.Request.URL.Query())
}

// KPIs handles GET /kpis
func (h *StatsHandler) KPIs(c *gin.Context) {
	f, key := filterAndKey(c, "kpis")
	result, err := h.stats.KPIs(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Total handles GET /accidents/total
func (h *StatsHandler) Total(c *gin.Context) {
	result, err := h.stats.TotalAccidents()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ByMonth handles GET /accidents/by_month
func (h *StatsHandler) ByMonth(c *gin.Context) {
	f, key := filterAndKey(c, "by_month")
	result, err := h.stats.ByPeriod(f, c.DefaultQuery("granularity", "month"), key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// BySeverity handles GET /accidents/by_severity
func (h *StatsHandler) BySeverity(c *gin.Context) {
	f, key := filterAndKey(c, "by_severity")
	result, err := h.stats.BySeverity(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ByCause handles GET /accidents/by_cause
func (h *StatsHandler) ByCause(c *gin.Context) {
	f := models.ParseAccidentFilter(c.Query)
	result, err := h.stats.ByCause(f)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ByGovernorate handles GET /accidents/by_governorate
func (h *StatsHandler) ByGovernorate(c *gin.Context) {
	f, key := filterAndKey(c, "by_governorate")
	result, err := h.stats.ByGovernorate(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ByDelegation handles GET /accidents/by_delegation
func (h *StatsHandler) ByDelegation(c *gin.Context) {
	f, key := filterAndKey(c, "by_delegation")
	result, err := h.stats.ByDelegation(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// HourWeekday handles GET /accidents/hour_weekday
func (h *StatsHandler) HourWeekday(c *gin.Context) {
	f, key := filterAndKey(c, "hour_weekday")
	result, err := h.stats.HourWeekday(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Sankey handles GET /sankey/cause_severity_location
func (h *StatsHandler) Sankey(c *gin.Context) {
	f, key := filterAndKey(c, "sankey_csl")
	result, err := h.stats.Sankey(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// GovernorateTimeseries handles GET /accidents/by_governorate_timeseries
func (h *StatsHandler) GovernorateTimeseries(c *gin.Context) {
	months := service.ParseIntParam(c.Query("months"), 6)
	top := service.ParseIntParam(c.Query("top"), 8)
	result, err := h.stats.GovernorateTimeseries(months, top)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Comparison handles GET /comparison
func (h *StatsHandler) Comparison(c *gin.Context) {
	f, key := filterAndKey(c, "comparison")
	result, err := h.stats.Comparison(f, c.DefaultQuery("period", "month"), key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Hotspots handles GET /hotspots
func (h *StatsHandler) Hotspots(c *gin.Context) {
	f, key := filterAndKey(c, "hotspots")
	limit := service.ParseIntParam(c.Query("limit"), 10)
	minCount := service.ParseIntParam(c.Query("min_count"), 5)
	result, err := h.stats.Hotspots(f, limit, minCount, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// SeverityDistribution handles GET /severity/distribution
func (h *StatsHandler) SeverityDistribution(c *gin.Context) {
	f, key := filterAndKey(c, "severity_dist")
	result, err := h.stats.SeverityDistribution(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// CauseAnalysis handles GET /causes/analysis
func (h *StatsHandler) CauseAnalysis(c *gin.Context) {
	f, key := filterAndKey(c, "cause_analysis")
	result, err := h.stats.CauseAnalysis(f, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ConfirmedVsReported handles GET /reports/confirmed_vs_reported
func (h *StatsHandler) ConfirmedVsReported(c *gin.Context) {
	result, err := h.stats.ConfirmedVsReported(c.DefaultQuery("granularity", "month"), c.Query("year"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// ReportStatusCounts handles GET /reports/status_counts
func (h *StatsHandler) ReportStatusCounts(c *gin.Context) {
	result, err := h.stats.ReportStatusCounts()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Dashboard handles GET /dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	result, err := h.stats.Dashboard()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// QuickStats handles GET /quick-stats
func (h *StatsHandler) QuickStats(c *gin.Context) {
	result, err := h.stats.QuickStats(c.DefaultQuery("period", "month"), c.Query("governorate"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// TrendAnalysis handles GET /trends/analysis
func (h *StatsHandler) TrendAnalysis(c *gin.Context) {
	f, key := filterAndKey(c, "trends_analysis")
	periods := service.ParseIntParam(c.Query("periods"), 12)
	result, err := h.trends.Analysis(f, c.DefaultQuery("granularity", "month"), periods, key)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}
