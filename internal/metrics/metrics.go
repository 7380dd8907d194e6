// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービスや勤務サービスから利用する。
type MetricsCollector interface {
	RecordTokenIssued()
	RecordAuthRejected()
	RecordShiftOpened(shiftType string)
	RecordShiftClosed(shiftType string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	tokensIssued   prometheus.Counter
	authRejected   prometheus.Counter
	shiftsOpened   *prometheus.CounterVec
	shiftsClosed   *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftgate_tokens_issued_total",
			Help: "発行されたAPIトークンの合計数",
		}),
		authRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftgate_auth_rejected_total",
			Help: "拒否された認証試行の合計数",
		}),
		shiftsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftgate_shifts_opened_total",
			Help: "開始された勤務の合計数",
		}, []string{"shift_type"}),
		shiftsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftgate_shifts_closed_total",
			Help: "終了された勤務の合計数",
		}, []string{"shift_type"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftgate_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftgate_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.tokensIssued,
		c.authRejected,
		c.shiftsOpened,
		c.shiftsClosed,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordAuthRejected は認証拒否を記録する。
func (c *Collector) RecordAuthRejected() {
	c.authRejected.Inc()
}

// RecordShiftOpened は勤務開始を記録する。
func (c *Collector) RecordShiftOpened(shiftType string) {
	c.shiftsOpened.WithLabelValues(shiftType).Inc()
}

// RecordShiftClosed は勤務終了を記録する。
func (c *Collector) RecordShiftClosed(shiftType string) {
	c.shiftsClosed.WithLabelValues(shiftType).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
