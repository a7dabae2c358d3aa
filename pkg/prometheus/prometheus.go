package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler registers the given collectors together with the go and process collectors on a
// fresh registry.
func NewHandler(cs ...prometheus.Collector) http.Handler {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	for _, c := range cs {
		registry.MustRegister(c)
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
