package handlers

import (
	"bytes"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

var (
	readingsTotal *prometheus.CounterVec
	alertsTotal   *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	readingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iotsentinel",
			Name:      "readings_total",
			Help:      "Total number of ingestion attempts by terminal outcome.",
		},
		[]string{"outcome"},
	)
	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iotsentinel",
			Name:      "alerts_total",
			Help:      "Total number of alerts raised by the ingestion pipeline.",
		},
		[]string{"type"},
	)
	prometheus.MustRegister(readingsTotal, alertsTotal)
}

// MetricsHandler exposes service metrics in the Prometheus text format.
// Runtime collector families (go_*, process_*) are filtered out so the
// endpoint only reports what this service measures.
func MetricsHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to gather metrics")
			return
		}

		filtered := make([]*dto.MetricFamily, 0, len(metricFamilies))
		for _, mf := range metricFamilies {
			name := mf.GetName()
			if strings.HasPrefix(name, "go_") || strings.HasPrefix(name, "process_") {
				continue
			}
			filtered = append(filtered, mf)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}
