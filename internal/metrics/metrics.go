// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// キャッシュ参照結果のラベル値
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	// RecordMutation は記録の作成・更新・削除を記録する。kindは記録の種類、opは操作名。
	RecordMutation(kind, op string)
	ObserveAnalyticsBuild(section string, d time.Duration)
	RecordCacheResult(result string)
	RecordLinkCheck(result string)
	RecordHTTPStatus(statusCode int)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	mutations       *prometheus.CounterVec
	analyticsBuild  *prometheus.HistogramVec
	cacheResults    *prometheus.CounterVec
	linkChecks      *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	sessionsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careertrack_record_mutations_total",
			Help: "記録の種類・操作別の変更数",
		}, []string{"kind", "op"}),
		analyticsBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careertrack_analytics_build_seconds",
			Help:    "集計結果の構築時間（秒）",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"section"}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careertrack_analytics_cache_total",
			Help: "集計キャッシュのヒット・ミス数",
		}, []string{"result"}),
		linkChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careertrack_link_checks_total",
			Help: "LinkedIn投稿リンク確認の結果別件数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careertrack_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careertrack_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.mutations,
		c.analyticsBuild,
		c.cacheResults,
		c.linkChecks,
		c.httpStatus,
		c.sessionsCleaned,
	)

	return c
}

// RecordMutation は記録の変更を記録する。
func (c *Collector) RecordMutation(kind, op string) {
	c.mutations.WithLabelValues(kind, op).Inc()
}

// ObserveAnalyticsBuild は集計の構築時間を記録する。
func (c *Collector) ObserveAnalyticsBuild(section string, d time.Duration) {
	c.analyticsBuild.WithLabelValues(section).Observe(d.Seconds())
}

// RecordCacheResult はキャッシュのヒット・ミスを記録する。
func (c *Collector) RecordCacheResult(result string) {
	c.cacheResults.WithLabelValues(result).Inc()
}

// RecordLinkCheck はリンク確認の結果を記録する。
func (c *Collector) RecordLinkCheck(result string) {
	c.linkChecks.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsCleaned は削除したセッション数を加算する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。メトリクスを使わない構成とテストで使う。
type Nop struct{}

func (Nop) RecordMutation(kind, op string)                        {}
func (Nop) ObserveAnalyticsBuild(section string, d time.Duration) {}
func (Nop) RecordCacheResult(result string)                       {}
func (Nop) RecordLinkCheck(result string)                         {}
func (Nop) RecordHTTPStatus(statusCode int)                       {}
func (Nop) RecordSessionsCleaned(count int64)                     {}

// OrNop はcがnilの場合にNopを返す。
func OrNop(c MetricsCollector) MetricsCollector {
	if c == nil {
		return Nop{}
	}
	return c
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware はレスポンスのステータスコードをcollectorに記録する。
func Middleware(collector MetricsCollector) func(http.Handler) http.Handler {
	collector = OrNop(collector)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			collector.RecordHTTPStatus(rec.statusCode)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
