package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64
	AnalysesTotal      atomic.Uint64
	AnalysesFailed     atomic.Uint64
	ExtractionsTotal   atomic.Uint64
	ExtractionsFailed  atomic.Uint64
	UploadsRejected    atomic.Uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// RecordAnalysis counts one finished analysis.
func RecordAnalysis(failed bool) {
	globalMetrics.AnalysesTotal.Add(1)
	if failed {
		globalMetrics.AnalysesFailed.Add(1)
	}
}

// RecordExtraction counts one finished extraction.
func RecordExtraction(failed bool) {
	globalMetrics.ExtractionsTotal.Add(1)
	if failed {
		globalMetrics.ExtractionsFailed.Add(1)
	}
}

// RecordRejectedUpload counts an upload refused for its media type.
func RecordRejectedUpload() {
	globalMetrics.UploadsRejected.Add(1)
}

// GetMetrics returns current metrics. sessions is the number of open sessions.
func GetMetrics(sessions int) map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       globalMetrics.RequestsTotal.Load(),
		"requests_in_progress": globalMetrics.RequestsInProgress.Load(),
		"requests_success":     globalMetrics.RequestsSuccess.Load(),
		"requests_failed":      globalMetrics.RequestsFailed.Load(),
		"analyses_total":       globalMetrics.AnalysesTotal.Load(),
		"analyses_failed":      globalMetrics.AnalysesFailed.Load(),
		"extractions_total":    globalMetrics.ExtractionsTotal.Load(),
		"extractions_failed":   globalMetrics.ExtractionsFailed.Load(),
		"uploads_rejected":     globalMetrics.UploadsRejected.Load(),
		"sessions_open":        sessions,
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.RequestsTotal.Add(1)
		globalMetrics.RequestsInProgress.Add(1)
		defer globalMetrics.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			globalMetrics.RequestsSuccess.Add(1)
		} else {
			globalMetrics.RequestsFailed.Add(1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(sessions func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GetMetrics(sessions()))
	}
}

// Recorder feeds session outcomes into the global counters.
type Recorder struct{}

func (Recorder) Analysis(failed bool)   { RecordAnalysis(failed) }
func (Recorder) Extraction(failed bool) { RecordExtraction(failed) }
func (Recorder) RejectedUpload()        { RecordRejectedUpload() }
