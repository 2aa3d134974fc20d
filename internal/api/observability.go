package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orb-arena/internal/game"
)

// Metrics with bounded cardinality: no per-player or per-IP labels.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.0167, 0.025, 0.05},
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_websocket_connections_active",
		Help: "Currently open websocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_websocket_messages_sent_total",
		Help: "Frames written to websocket clients",
	})

	framesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_frames_received_total",
		Help: "Frames read from websocket clients",
	})

	framesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_frames_dropped_total",
		Help: "Outbound frames discarded under backpressure",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_connection_rejected_total",
		Help: "Connections rejected at admission",
	}, []string{"reason"}) // bounded: total_limit, ip_limit, rate_limit
)

// ObserveTick records one tick's wall duration.
func ObserveTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// UpdateWSConnections sets the active connection gauge.
func UpdateWSConnections(n int) {
	wsConnectionsActive.Set(float64(n))
}

// IncrementWSMessages counts one outbound frame written.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// IncrementFramesReceived counts one inbound frame read.
func IncrementFramesReceived() {
	framesReceivedTotal.Inc()
}

// RecordFrameDropped counts an outbound frame discarded under backpressure.
func RecordFrameDropped() {
	framesDroppedTotal.Inc()
}

// RecordConnectionRejected counts a rejected connection by reason.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

var engineGaugesOnce sync.Once

// RegisterEngineGauges exposes live world counts as gauges sampled at
// scrape time, so the engine carries no metrics dependency itself.
// Registration is once-per-process; the first engine wins.
func RegisterEngineGauges(engine *game.Engine) {
	engineGaugesOnce.Do(func() { registerEngineGauges(engine) })
}

func registerEngineGauges(engine *game.Engine) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_player_count",
		Help: "Connected players",
	}, func() float64 { return float64(engine.Stats().Players) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_orb_count",
		Help: "Orbs on the map",
	}, func() float64 { return float64(engine.Stats().Orbs) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "arena_projectile_count",
		Help: "Projectiles in flight",
	}, func() float64 { return float64(engine.Stats().Projectiles) })
}

// ObservabilityConfig configures the localhost debug server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // keep on 127.0.0.1, pprof must not face the internet
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer serves /metrics and pprof on a localhost-only listener.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	go func() {
		log.Printf("🔍 debug server on http://%s (metrics + pprof)", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ debug server stopped: %v", err)
		}
	}()
	return nil
}
