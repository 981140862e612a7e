package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Estimate metrics
	EstimatesComputed int64
	EstimatesAwaiting int64
	WeightRejections  int64
	TableRejections   int64
	ComponentsCounted int64
	MinutesEstimated  int64

	// Export metrics
	ExportsGenerated  int64
	ExportsDownloaded int64
	ExportsMissed     int64
	ExportBytes       int64

	// File upload metrics
	FilesUploaded      int64
	TotalBytesUploaded int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64

	// Rate limiting
	RateLimited int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// New creates an isolated metrics instance
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// RecordEstimate records a finished computation
func (m *Metrics) RecordEstimate(components int, minutes int) {
	atomic.AddInt64(&m.EstimatesComputed, 1)
	atomic.AddInt64(&m.ComponentsCounted, int64(components))
	atomic.AddInt64(&m.MinutesEstimated, int64(minutes))
}

// IncrementAwaiting counts requests that had no input yet
func (m *Metrics) IncrementAwaiting() {
	atomic.AddInt64(&m.EstimatesAwaiting, 1)
}

// IncrementWeightRejection counts computations blocked by invalid weights
func (m *Metrics) IncrementWeightRejection() {
	atomic.AddInt64(&m.WeightRejections, 1)
}

// IncrementTableRejection counts tables rejected for a missing column
func (m *Metrics) IncrementTableRejection() {
	atomic.AddInt64(&m.TableRejections, 1)
}

// IncrementExportGenerated increments export counters
func (m *Metrics) IncrementExportGenerated(bytes int) {
	atomic.AddInt64(&m.ExportsGenerated, 1)
	atomic.AddInt64(&m.ExportBytes, int64(bytes))
}

// IncrementExportDownload increments download counters
func (m *Metrics) IncrementExportDownload(found bool) {
	if found {
		atomic.AddInt64(&m.ExportsDownloaded, 1)
	} else {
		atomic.AddInt64(&m.ExportsMissed, 1)
	}
}

// IncrementFileUpload increments file upload counters
func (m *Metrics) IncrementFileUpload(bytes int64) {
	atomic.AddInt64(&m.FilesUploaded, 1)
	atomic.AddInt64(&m.TotalBytesUploaded, bytes)
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageIn increments WebSocket incoming message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments WebSocket outgoing message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// IncrementRateLimited counts rejected requests
func (m *Metrics) IncrementRateLimited() {
	atomic.AddInt64(&m.RateLimited, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]EndpointMetrics)
	for k, v := range m.EndpointMetrics {
		result[k] = EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	return result
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	// Uptime
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	// Request metrics
	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		RateLimited  int64   `json:"rate_limited"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	// Estimate metrics
	Estimates struct {
		Computed         int64 `json:"computed"`
		Awaiting         int64 `json:"awaiting_input"`
		WeightRejections int64 `json:"weight_rejections"`
		TableRejections  int64 `json:"table_rejections"`
		Components       int64 `json:"components_counted"`
		Minutes          int64 `json:"minutes_estimated"`
	} `json:"estimates"`

	// Export metrics
	Exports struct {
		Generated  int64 `json:"generated"`
		Downloaded int64 `json:"downloaded"`
		Missed     int64 `json:"missed"`
		TotalBytes int64 `json:"total_bytes"`
	} `json:"exports"`

	// File metrics
	Files struct {
		Uploaded   int64 `json:"uploaded"`
		TotalBytes int64 `json:"total_bytes"`
	} `json:"files"`

	// WebSocket metrics
	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesIn  int64 `json:"messages_in"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	// System metrics
	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	// Endpoint-specific metrics
	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.RateLimited = atomic.LoadInt64(&m.RateLimited)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	snapshot.Estimates.Computed = atomic.LoadInt64(&m.EstimatesComputed)
	snapshot.Estimates.Awaiting = atomic.LoadInt64(&m.EstimatesAwaiting)
	snapshot.Estimates.WeightRejections = atomic.LoadInt64(&m.WeightRejections)
	snapshot.Estimates.TableRejections = atomic.LoadInt64(&m.TableRejections)
	snapshot.Estimates.Components = atomic.LoadInt64(&m.ComponentsCounted)
	snapshot.Estimates.Minutes = atomic.LoadInt64(&m.MinutesEstimated)

	snapshot.Exports.Generated = atomic.LoadInt64(&m.ExportsGenerated)
	snapshot.Exports.Downloaded = atomic.LoadInt64(&m.ExportsDownloaded)
	snapshot.Exports.Missed = atomic.LoadInt64(&m.ExportsMissed)
	snapshot.Exports.TotalBytes = atomic.LoadInt64(&m.ExportBytes)

	snapshot.Files.Uploaded = atomic.LoadInt64(&m.FilesUploaded)
	snapshot.Files.TotalBytes = atomic.LoadInt64(&m.TotalBytesUploaded)

	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesIn = atomic.LoadInt64(&m.WSMessagesIn)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	// Warn if using more than 80% of limit
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// CheckExportStoreHealth reports degraded when the store is full
func CheckExportStoreHealth(size, capacity int) HealthStatus {
	if capacity > 0 && size >= capacity {
		return HealthStatus{
			Status:  "degraded",
			Message: "export store full, oldest exports are being evicted",
		}
	}
	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
