package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every linepool metric name.
const DefaultNamespace = "linepool"

// Config selects where and under which names a component reports.
type Config struct {
	// Enabled turns collection on. A MetricsPool built with Enabled false
	// still keeps its registry and can be switched on later.
	Enabled bool

	// Registry receives the collectors. Nil means prometheus.DefaultRegisterer,
	// which is what promhttp.Handler serves.
	Registry prometheus.Registerer

	// Namespace replaces "linepool" as the metric name prefix.
	Namespace string

	// Labels are attached to every series, for example {"host": "build-01"}
	// when several linepool processes report to one Prometheus.
	Labels prometheus.Labels
}

// DefaultConfig reports to the global Prometheus registry under the
// "linepool" namespace with no constant labels. Repeated counting runs in
// one process share the same collectors.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
	}
}

// Instrumentable is implemented by components whose metrics can be toggled
// at runtime, such as workerpool.MetricsPool.
type Instrumentable interface {
	// EnableMetrics turns collection on; a non-nil config.Registry also
	// replaces the registry reported to.
	EnableMetrics(config Config) error

	// DisableMetrics stops collection without unregistering anything.
	DisableMetrics()

	MetricsEnabled() bool
}
