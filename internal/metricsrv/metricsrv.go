// Package metricsrv exposes Prometheus counters and gauges for the decode
// pipeline (files processed, frames decoded/skipped, signal points written)
// and serves them over HTTP alongside a readiness probe.
package metricsrv

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/JanSpindler/blf2mdf/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters and gauges.
var (
	FilesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blf2mdf_files_processed_total",
		Help: "Total BLF files processed to completion.",
	})
	FilesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blf2mdf_files_failed_total",
		Help: "Total BLF files that failed to open or parse entirely.",
	})
	ContainersDecompressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blf2mdf_containers_decompressed_total",
		Help: "Total LogContainer objects successfully decompressed.",
	})
	ContainersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blf2mdf_containers_skipped_total",
		Help: "Total LogContainer objects skipped, by reason.",
	}, []string{"reason"})
	FramesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blf2mdf_frames_decoded_total",
		Help: "Total inner objects decoded into CAN frames, by object type.",
	}, []string{"object_type"})
	FramesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blf2mdf_frames_skipped_total",
		Help: "Total CAN frames, or single signals within a frame, skipped during signal extraction, by reason.",
	}, []string{"reason"})
	SignalPointsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blf2mdf_signal_points_written_total",
		Help: "Total signal data points written to the stream sink.",
	})
	ActiveSignals = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blf2mdf_active_signals",
		Help: "Number of distinct signals held by the current run's signal store.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blf2mdf_build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blf2mdf_errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Reason label constants (stable values to bound cardinality).
const (
	ReasonUnknownCompression = "unknown_compression"
	ReasonCorruptContainer   = "corrupt_container"
	ReasonBusDedup           = "bus_dedup"
	ReasonMultiplexGate      = "multiplex_gate"
	ReasonUnknownSignal      = "unknown_signal"
	ReasonDecodeError        = "decode_error"
	ReasonUnsupportedType    = "unsupported_type"
	ReasonChannelOutOfRange  = "channel_out_of_range"

	ErrBlfRead   = "blf_read"
	ErrDbcParse  = "dbc_parse"
	ErrSinkWrite = "sink_write"
)

var localErrors uint64

// StartHTTP serves Prometheus metrics at /metrics and a readiness probe at
// /ready on addr.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))

			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logging.L().Info("metrics_listen", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()

	return srv
}

// IncError increments the error counter for the given subsystem label.
func IncError(where string) {
	Errors.WithLabelValues(where).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (call once at startup) and
// pre-registers the known error and skip-reason label series so their
// first occurrence doesn't pay registration latency.
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)

	for _, lbl := range []string{ErrBlfRead, ErrDbcParse, ErrSinkWrite} {
		Errors.WithLabelValues(lbl).Add(0)
	}

	for _, reason := range []string{ReasonUnknownCompression, ReasonCorruptContainer} {
		ContainersSkipped.WithLabelValues(reason).Add(0)
	}

	for _, reason := range []string{
		ReasonBusDedup, ReasonMultiplexGate, ReasonUnknownSignal,
		ReasonDecodeError, ReasonUnsupportedType, ReasonChannelOutOfRange,
	} {
		FramesSkipped.WithLabelValues(reason).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) {
	readinessMu.Lock()
	readinessFn = fn
	readinessMu.Unlock()
}

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()

	if fn == nil {
		return true
	}

	return fn()
}
