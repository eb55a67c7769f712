package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TaxQuotesTotal counts cart tax quote computations.
	TaxQuotesTotal prometheus.Counter
	// TaxQuoteItems observes line-item counts per quote.
	TaxQuoteItems prometheus.Histogram
	// TaxQuoteAmounts observes the net tax per quote in currency units.
	TaxQuoteAmounts prometheus.Histogram
	// PayrollReportsTotal counts payroll report computations by kind and method.
	PayrollReportsTotal *prometheus.CounterVec
	// YTDFallbacksTotal counts T4 computations that degraded from the
	// snapshot path to full recompute.
	YTDFallbacksTotal prometheus.Counter
	// FrequencyDetectionsTotal counts cadence detections by result.
	FrequencyDetectionsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TaxQuotesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_quotes_total",
			Help:      "Count of cart tax quote computations.",
		})
		TaxQuoteItems = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tax_quote_items",
			Help:      "Line items per cart tax quote.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		})
		TaxQuoteAmounts = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tax_quote_amount",
			Help:      "Net tax per quote in currency units.",
			Buckets:   []float64{0.5, 1, 5, 10, 50, 100, 500, 1000},
		})
		PayrollReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payroll_reports_total",
			Help:      "Count of payroll report computations by kind and calculation method.",
		}, []string{"report", "method"})
		YTDFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payroll_ytd_fallbacks_total",
			Help:      "Count of T4 computations that fell back from the YTD snapshot path.",
		})
		FrequencyDetectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payroll_frequency_detections_total",
			Help:      "Count of pay-frequency detections by detected cadence.",
		}, []string{"frequency", "confident"})

		reg.MustRegister(
			TaxQuotesTotal, TaxQuoteItems, TaxQuoteAmounts,
			PayrollReportsTotal, YTDFallbacksTotal, FrequencyDetectionsTotal,
		)
	})
}

// ObserveTaxQuote records one cart quote computation.
func ObserveTaxQuote(items int, netTax float64) {
	if TaxQuotesTotal == nil {
		return
	}
	TaxQuotesTotal.Inc()
	TaxQuoteItems.Observe(float64(items))
	TaxQuoteAmounts.Observe(netTax)
}

// ObservePayrollReport records one payroll report computation.
func ObservePayrollReport(report, method string) {
	if PayrollReportsTotal == nil {
		return
	}
	PayrollReportsTotal.WithLabelValues(report, method).Inc()
}

// ObserveYTDFallback records a degraded T4 snapshot lookup.
func ObserveYTDFallback() {
	if YTDFallbacksTotal == nil {
		return
	}
	YTDFallbacksTotal.Inc()
}

// ObserveFrequencyDetection records one cadence detection outcome.
func ObserveFrequencyDetection(frequency string, confidence int) {
	if FrequencyDetectionsTotal == nil {
		return
	}
	if frequency == "" {
		frequency = "unknown"
	}
	confident := "false"
	if confidence > 0 {
		confident = "true"
	}
	FrequencyDetectionsTotal.WithLabelValues(frequency, confident).Inc()
}
