package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LinksProcessedTotal *prometheus.CounterVec
	QCRequestsTotal     *prometheus.CounterVec
	QCRetrievalDuration prometheus.Histogram
	ScrapesTotal        *prometheus.CounterVec
	ScrapeDuration      prometheus.Histogram
	ErrorsTotal         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		LinksProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "links_processed_total",
			Help: "The total number of links run through the pipeline",
		}, []string{"platform"}),
		QCRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qc_requests_total",
			Help: "The total number of QC retrievals by outcome",
		}, []string{"outcome"}), // e.g. 'success', 'no_images_found', 'invalid_goods_url'
		QCRetrievalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "qc_retrieval_duration_seconds",
			Help:    "Duration of full QC retrievals including retries",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		ScrapesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrapes_total",
			Help: "The total number of agent page scrapes by outcome",
		}, []string{"outcome"}),
		ScrapeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Duration of agent page scrapes",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'db_save_failed', 'notify_failed'
	}
}

func (m *Metrics) IncLinksProcessed(platform string) {
	m.LinksProcessedTotal.WithLabelValues(platform).Inc()
}

func (m *Metrics) IncQCRequests(outcome string) {
	m.QCRequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncScrapes(outcome string) {
	m.ScrapesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
