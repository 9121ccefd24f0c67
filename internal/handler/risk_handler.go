package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadsafety-tn/accidents-backend-go/internal/service"
	"github.com/roadsafety-tn/accidents-backend-go/pkg/response"
)

// RiskHandler exposes the predictive endpoints. These never return a 500:
// the service degrades to fallback payloads on failure.
type RiskHandler struct {
	risk *service.RiskService
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(risk *service.RiskService) *RiskHandler {
	return &RiskHandler{risk: risk}
}

// RiskZones handles GET /risk-zones
func (h *RiskHandler) RiskZones(c *gin.Context) {
	response.Success(c, h.risk.RiskZones())
}

// Predictions handles GET /predictions
func (h *RiskHandler) Predictions(c *gin.Context) {
	response.Success(c, h.risk.Predictions())
}

// Weather handles GET /weather
func (h *RiskHandler) Weather(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		region = c.Query("governorate")
	}
	response.Success(c, h.risk.Weather(region))
}

// EmergencyHandler exposes the static emergency directory.
type EmergencyHandler struct {
	emergency *service.EmergencyService
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(emergency *service.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergency: emergency}
}

// Directory handles GET /emergency-services
func (h *EmergencyHandler) Directory(c *gin.Context) {
	response.Success(c, h.emergency.Directory(c.Query("governorate"), c.Query("type")))
}

// NearestHospital handles GET /nearest-hospital
func (h *EmergencyHandler) NearestHospital(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		response.BadRequest(c, "lat and lng are required")
		return
	}

	result, err := h.emergency.NearestHospital(lat, lng)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.Success(c, result)
}
