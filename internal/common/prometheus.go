package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	PointsRecordedTotal        = "faction_points_recorded_total"
	PointTransactionsTotal     = "faction_point_transactions_total"
	QRCodeIssuedTotal          = "faction_qr_codes_issued_total"
	QRCodeRedeemTotal          = "faction_qr_code_redeem_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		PointsRecordedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PointsRecordedTotal,
			Help: "Sum of absolute point deltas recorded",
		}, []string{"faction", "type"}),
		PointTransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PointTransactionsTotal,
			Help: "Count of recorded point transactions",
		}, []string{"faction", "type"}),
		QRCodeIssuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QRCodeIssuedTotal,
			Help: "Count of issued purchase QR codes",
		}, []string{"faction"}),
		QRCodeRedeemTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QRCodeRedeemTotal,
			Help: "Count of QR code redemption attempts by outcome",
		}, []string{"outcome"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)

// PromCollectors returns every collector of the service, used to build the metrics handler.
func PromCollectors() []prometheus.Collector {
	var result []prometheus.Collector
	for _, c := range PromCounters {
		result = append(result, c)
	}

	for _, h := range PromHistograms {
		result = append(result, h)
	}

	return result
}
