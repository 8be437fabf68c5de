package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkHealth(t *testing.T) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	HealthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	return rec.Code, status
}

func TestHealthCheckHandler(t *testing.T) {
	InitHealth(3)
	SetFetchInterval(30 * time.Second)
	SetLastFetch("fip", time.Now(), 0)

	code, status := checkHealth(t)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "fip", status.Station)

	SetLastFetch("fip", time.Now(), 3)
	code, status = checkHealth(t)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, 3, status.ConsecutiveFailures)

	SetLastFetch("fip", time.Now().Add(-2*time.Minute), 0)
	code, status = checkHealth(t)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, status.Message, "delayed")
}

func TestHealthCheckServerKeepsState(t *testing.T) {
	InitHealth(3)
	SetFetchInterval(30 * time.Second)
	SetLastFetch("fip", time.Now().Add(-2*time.Minute), 0)

	go StartHealthCheckServer(0)
	time.Sleep(20 * time.Millisecond)

	code, status := checkHealth(t)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, status.Message, "delayed")
}

func TestHealthCheckForgetsStoppedStation(t *testing.T) {
	InitHealth(3)
	SetFetchInterval(30 * time.Second)
	SetLastFetch("fip", time.Now(), 5)

	code, _ := checkHealth(t)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	SetFetchInterval(0)
	code, status := checkHealth(t)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, status.ConsecutiveFailures)
	assert.Empty(t, status.Station)
}

func TestHealthCheckFailureThreshold(t *testing.T) {
	InitHealth(5)
	SetFetchInterval(30 * time.Second)

	SetLastFetch("nova", time.Now(), 4)
	code, _ := checkHealth(t)
	assert.Equal(t, http.StatusOK, code)

	SetLastFetch("nova", time.Now(), 5)
	code, _ = checkHealth(t)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	InitHealth(0)
	SetFetchInterval(30 * time.Second)
	SetLastFetch("nova", time.Now(), 100)
	code, _ = checkHealth(t)
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthCheckIdle(t *testing.T) {
	InitHealth(3)
	SetFetchInterval(0)
	SetLastFetch("", time.Now().Add(-time.Hour), 0)

	code, status := checkHealth(t)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("WRT_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("WRT_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("WRT_TEST_MISSING", "fallback"))
}
