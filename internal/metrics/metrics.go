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
// キャッシュ層・トークン検証・HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
	RecordCacheError(op string)
	RecordHTTPRequest(method string, statusCode int, duration time.Duration)
	RecordTokenRejected(code string)
	RecordTokenIssued()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	cacheErrors   *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	tokenRejected *prometheus.CounterVec
	tokensIssued  prometheus.Counter
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "キャッシュヒットの合計数",
		}, []string{"collection"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "キャッシュミスの合計数",
		}, []string{"collection"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_errors_total",
			Help: "操作別のキャッシュエラー数",
		}, []string{"op"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_http_responses_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		tokenRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_token_rejected_total",
			Help: "拒否されたトークンの理由別件数",
		}, []string{"code"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_tokens_issued_total",
			Help: "発行したトークンの合計数",
		}),
	}

	reg.MustRegister(
		c.cacheHits,
		c.cacheMisses,
		c.cacheErrors,
		c.httpStatus,
		c.httpLatency,
		c.tokenRejected,
		c.tokensIssued,
	)

	return c
}

// collectionLabel はキャッシュキーをラベル値に変換する。
// カテゴリ名をそのままラベルにするとカーディナリティが増えるため、
// 全件キー以外は "category" にまとめる。
func collectionLabel(key string) string {
	if key == "products:catalog:all" {
		return "all"
	}
	return "category"
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(key string) {
	c.cacheHits.WithLabelValues(collectionLabel(key)).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(key string) {
	c.cacheMisses.WithLabelValues(collectionLabel(key)).Inc()
}

// RecordCacheError はキャッシュ操作の失敗を記録する。
func (c *Collector) RecordCacheError(op string) {
	c.cacheErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest はHTTPレスポンスのステータスと処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordTokenRejected はトークン検証の拒否をエラーコード別に記録する。
func (c *Collector) RecordTokenRejected(code string) {
	c.tokenRejected.WithLabelValues(code).Inc()
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
