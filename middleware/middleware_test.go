package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHTTPMetricsHandlerRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/hello/:id", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hello/42", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	labels := prometheus.Labels{"method": http.MethodGet, "route": "/hello/:id", "status": "201"}
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.With(labels)))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight))
	assert.NotZero(t, testutil.CollectAndCount(metrics.Duration))

	again, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(again.Requests.With(labels)))
}

func TestHTTPMetricsHandlerNoopWhenNil(t *testing.T) {
	router := gin.New()
	router.Use((*HTTPMetrics)(nil).Handler())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestJWTAuthMiddleware(t *testing.T) {
	utils.Logger = zaptest.NewLogger(t)
	router := gin.New()
	router.Use(JWTAuthMiddleware())
	router.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("uid")) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body.Error)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, err := utils.GenerateToken("uid-7", "phone", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "uid-7", rr.Body.String())
}

func TestClientKey(t *testing.T) {
	router := gin.New()
	require.NoError(t, router.SetTrustedProxies([]string{"192.0.2.1", "10.0.0.0/8"}))
	router.Use(DeviceKeyMiddleware())
	router.GET("/key", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("clientKey")) })

	req := httptest.NewRequest(http.MethodGet, "/key", nil)
	req.Header.Set("X-Device-ID", "tab-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "device:tab-1@192.0.2.1", rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/key", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "ip:203.0.113.9", rr.Body.String())
}

func TestClientKeyIgnoresForwardingFromUntrustedPeers(t *testing.T) {
	router := gin.New()
	require.NoError(t, router.SetTrustedProxies(nil))
	router.GET("/key", func(c *gin.Context) { c.String(http.StatusOK, ClientKey(c)) })

	req := httptest.NewRequest(http.MethodGet, "/key", nil)
	req.RemoteAddr = "198.51.100.9:4100"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("X-Real-IP", "203.0.113.7")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "ip:198.51.100.9", rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/key", nil)
	req.RemoteAddr = "198.51.100.9:4100"
	req.Header.Set("X-Device-ID", "tab-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "device:tab-1@198.51.100.9", rr.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	utils.Logger = zaptest.NewLogger(t)
	router := gin.New()
	router.Use(RateLimitMiddleware(2))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "198.51.100.4:5000"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
