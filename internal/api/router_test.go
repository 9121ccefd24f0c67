package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roadsafety-tn/accidents-backend-go/internal/cache"
	"github.com/roadsafety-tn/accidents-backend-go/internal/config"
	"github.com/roadsafety-tn/accidents-backend-go/internal/database"
	"github.com/roadsafety-tn/accidents-backend-go/internal/handler"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
	"github.com/roadsafety-tn/accidents-backend-go/internal/service"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	accidents := repository.NewAccidentRepository(db)
	reports := repository.NewReportRepository(db)
	resultCache := cache.NewMemory()

	statsService := service.NewStatsService(accidents, reports, resultCache)
	trendService := service.NewTrendService(accidents, resultCache)
	riskService := service.NewRiskService(accidents, nil, zap.NewNop())
	emergencyService := service.NewEmergencyService()

	handlers := Handlers{
		Stats:     handler.NewStatsHandler(statsService, trendService),
		Risk:      handler.NewRiskHandler(riskService),
		Emergency: handler.NewEmergencyHandler(emergencyService),
		Admin:     handler.NewAdminHandler(resultCache),
	}

	cfg := &config.Config{
		JWTSecret:  testSecret,
		RateLimit:  1000,
		RateWindow: time.Minute,
	}
	return SetupRouter(cfg, zap.NewNop(), handlers), db
}

func doRequest(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestKPIsEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	_, err := db.Exec(
		`INSERT INTO accidents (occurred_at, severity, cause, governorate, source)
		 VALUES (?, 'fatal', 'speeding', 'Tunis', 'manual')`,
		repository.FormatTime(time.Now().UTC().AddDate(0, 0, -1)),
	)
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/v1/stats/kpis", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, 1, body.Data.Total)
}

func TestKPIsMalformedDateIsIgnored(t *testing.T) {
	router, db := newTestRouter(t)
	_, err := db.Exec(
		`INSERT INTO accidents (occurred_at, severity, governorate, source)
		 VALUES (?, 'minor', 'Tunis', 'manual')`,
		repository.FormatTime(time.Now().UTC().AddDate(0, 0, -1)),
	)
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/v1/stats/kpis?start=not-a-date", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Total)
}

func TestNearestHospitalRequiresCoordinates(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/stats/nearest-hospital", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/stats/nearest-hospital?lat=36.8&lng=10.18", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "distance_km")
}

func TestRiskZonesNeverErrors(t *testing.T) {
	router, db := newTestRouter(t)
	require.NoError(t, db.Close())

	w := doRequest(router, http.MethodGet, "/api/v1/stats/risk-zones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded":true`)
}

func TestCacheFlushRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/stats/cache/flush", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/stats/cache/flush", map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w = doRequest(router, http.MethodPost, "/api/v1/stats/cache/flush", map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"flushed":true`)
}

func TestEmergencyServicesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/stats/emergency-services?governorate=Sousse&type=hospitals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Farhat Hached")
	assert.NotContains(t, w.Body.String(), "Charles Nicolle")
}
