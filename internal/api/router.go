package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roadsafety-tn/accidents-backend-go/internal/config"
	"github.com/roadsafety-tn/accidents-backend-go/internal/handler"
	"github.com/roadsafety-tn/accidents-backend-go/internal/middleware"
)

// Handlers bundles the constructed handlers wired into the router.
type Handlers struct {
	Stats     *handler.StatsHandler
	Risk      *handler.RiskHandler
	Emergency *handler.EmergencyHandler
	Admin     *handler.AdminHandler
}

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", handler.Health)

	api := r.Group("/api/v1")
	{
		stats := api.Group("/stats")
		{
			stats.GET("/kpis", h.Stats.KPIs)
			stats.GET("/accidents/total", h.Stats.Total)
			stats.GET("/accidents/by_month", h.Stats.ByMonth)
			stats.GET("/accidents/by_severity", h.Stats.BySeverity)
			stats.GET("/accidents/by_cause", h.Stats.ByCause)
			stats.GET("/accidents/by_governorate", h.Stats.ByGovernorate)
			stats.GET("/accidents/by_delegation", h.Stats.ByDelegation)
			stats.GET("/accidents/hour_weekday", h.Stats.HourWeekday)
			stats.GET("/sankey/cause_severity_location", h.Stats.Sankey)
			stats.GET("/accidents/by_governorate_timeseries", h.Stats.GovernorateTimeseries)
			stats.GET("/comparison", h.Stats.Comparison)
			stats.GET("/hotspots", h.Stats.Hotspots)
			stats.GET("/severity/distribution", h.Stats.SeverityDistribution)
			stats.GET("/causes/analysis", h.Stats.CauseAnalysis)
			stats.GET("/reports/confirmed_vs_reported", h.Stats.ConfirmedVsReported)
			stats.GET("/reports/status_counts", h.Stats.ReportStatusCounts)
			stats.GET("/dashboard", h.Stats.Dashboard)
			stats.GET("/quick-stats", h.Stats.QuickStats)
			stats.GET("/trends/analysis", h.Stats.TrendAnalysis)

			stats.GET("/risk-zones", h.Risk.RiskZones)
			stats.GET("/predictions", h.Risk.Predictions)
			stats.GET("/weather", h.Risk.Weather)

			stats.GET("/emergency-services", h.Emergency.Directory)
			stats.GET("/nearest-hospital", h.Emergency.NearestHospital)

			stats.POST("/cache/flush", middleware.Auth(cfg.JWTSecret), h.Admin.FlushCache)
		}
	}

	return r
}
