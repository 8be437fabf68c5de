package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

type HealthStatus struct {
	Status              string `json:"status"`
	Message             string `json:"message,omitempty"`
	Station             string `json:"station,omitempty"`
	LastFetchTime       string `json:"last_fetch_time,omitempty"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
}

type healthState struct {
	mu            sync.Mutex
	station       string
	lastFetchTime time.Time
	failures      int
	fetchInterval time.Duration

	// Consecutive failures from which the station is reported unhealthy,
	// disabled when 0.
	failureThreshold int
}

var health healthState

// SetLastFetch records the outcome of the latest poll of station.
func SetLastFetch(station string, t time.Time, failures int) {
	health.mu.Lock()
	defer health.mu.Unlock()
	health.station = station
	health.lastFetchTime = t
	health.failures = failures
}

// InitHealth resets the health state before the server starts.
func InitHealth(failureThreshold int) {
	health.mu.Lock()
	defer health.mu.Unlock()
	health.station = ""
	health.lastFetchTime = time.Now()
	health.failures = 0
	health.fetchInterval = 0
	health.failureThreshold = failureThreshold
}

// SetFetchInterval sets the expected delay between two polls and restarts the
// delay check. Zero means nothing is polled: the last station is forgotten.
func SetFetchInterval(d time.Duration) {
	health.mu.Lock()
	defer health.mu.Unlock()
	health.fetchInterval = d
	health.lastFetchTime = time.Now()
	if d == 0 {
		health.station = ""
		health.failures = 0
	}
}

// HealthCheckHandler handles the health check requests
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	Logger.Debug("Health check request received")

	health.mu.Lock()
	station := health.station
	lastFetchTime := health.lastFetchTime
	failures := health.failures
	interval := health.fetchInterval
	threshold := health.failureThreshold
	health.mu.Unlock()

	status := HealthStatus{
		Status:              "healthy",
		Message:             "Service is running",
		Station:             station,
		ConsecutiveFailures: failures,
	}

	if ok, message := checkInterval("fetchTicker", lastFetchTime, interval); !ok {
		Logger.Warnf("Fetch ticker is delayed: %s", message)
		status.Status = "unhealthy"
		status.Message = message
	}
	Logger.Debugf("Last fetch time: %v", lastFetchTime)

	if station != "" && threshold > 0 && failures >= threshold {
		status.Status = "unhealthy"
		status.Message = fmt.Sprintf("%d consecutive failures fetching %s", failures, station)
	}

	if !lastFetchTime.IsZero() {
		status.LastFetchTime = lastFetchTime.Format(time.RFC3339)
	}

	Logger.Debugf("Health check response: %v", status)
	w.Header().Set("Content-Type", "application/json")
	if status.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// StartHealthCheckServer starts an HTTP server to serve health checks
func StartHealthCheckServer(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthCheckHandler)
	addr := fmt.Sprintf(":%d", port)
	Logger.Infof("Starting health check server on port %d", port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		Logger.Errorf("Error running health check server: %v", err)
	}
}

// checkInterval checks that a ticker ran within its expected interval, with 30s of slack.
func checkInterval(tickerName string, lastUpdateTime time.Time, expectedInterval time.Duration) (bool, string) {
	if expectedInterval == 0 {
		return true, fmt.Sprintf("%s is not expected to run", tickerName)
	}
	timeSinceLastUpdate := time.Since(lastUpdateTime)
	delayDuration := timeSinceLastUpdate - expectedInterval
	Logger.Debugf("Time since last %s: %s", tickerName, timeSinceLastUpdate)
	if delayDuration.Round(time.Second) > 30*time.Second {
		return false, fmt.Sprintf("%s is delayed by %s", tickerName, delayDuration.Round(time.Second))
	}
	return true, fmt.Sprintf("%s is running as expected", tickerName)
}
