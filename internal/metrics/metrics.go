// Package metrics exposes prometheus counters for the interpreter's
// ambient observability surface: WAF decisions, rate-limit rejections,
// restart overflows, and parse diagnostics. No example repo in the pack
// wires prometheus directly, but client_golang is a common enough ambient
// dependency across the Go ecosystem that the domain-stack expansion
// adopts it for this concern rather than hand-rolling
// counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WAFBlocks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vcl",
		Subsystem: "waf",
		Name:      "blocks_total",
		Help:      "Requests blocked by waf.block, by status code.",
	}, []string{"status"})

	RateLimitRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vcl",
		Subsystem: "ratelimit",
		Name:      "rejections_total",
		Help:      "Requests rejected by waf.rate_limit, by bucket key.",
	}, []string{"key"})

	RestartOverflows = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vcl",
		Subsystem: "driver",
		Name:      "restart_overflows_total",
		Help:      "Requests that exhausted the restart budget.",
	})

	ParseDiagnostics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vcl",
		Subsystem: "parser",
		Name:      "diagnostics_total",
		Help:      "Parser diagnostics emitted, by severity.",
	}, []string{"severity"})
)

// Register adds all collectors to reg. Call once at process startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(WAFBlocks, RateLimitRejections, RestartOverflows, ParseDiagnostics)
}
