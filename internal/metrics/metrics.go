package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discipline", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"route", "method", "code"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discipline", Name: "http_request_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "discipline", Name: "handler_errors_total", Help: "Handler errors answered with 5xx",
	})
	RecordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discipline", Name: "records_created_total", Help: "Merit/demerit records created",
	}, []string{"type"})
	RankingsFinalized = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "discipline", Name: "rankings_finalized_total", Help: "Week/grade rankings locked",
	})
	RuleSyncs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "discipline", Name: "rule_syncs_total", Help: "Rule catalog resyncs",
	})
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discipline", Name: "ranking_cache_lookups_total", Help: "Ranking cache lookups",
	}, []string{"result"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "discipline", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration, HandlerErrors,
		RecordsCreated, RankingsFinalized, RuleSyncs,
		CacheLookups, DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(route, method string, code int, d time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
	if code >= 500 {
		HandlerErrors.Inc()
	}
}

func CacheHit()  { CacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { CacheLookups.WithLabelValues("miss").Inc() }
