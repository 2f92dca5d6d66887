package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ledger operations. All counters move only after the
// backing transaction has committed.
type Metrics struct {
	referralsApplied   prometheus.Counter
	tierUnlocks        *prometheus.CounterVec
	checkIns           prometheus.Counter
	taskCompletions    *prometheus.CounterVec
	nftClaims          *prometheus.CounterVec
	achievementUnlocks *prometheus.CounterVec
	paymentFailures    prometheus.Counter
	boosterPurchases   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		referralsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tonbox_referrals_applied_total",
			Help: "Successful referral code applications.",
		}),
		tierUnlocks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tonbox_referral_tier_unlocks_total",
			Help: "One-time referral tier rewards granted.",
		}, []string{"tier"}),
		checkIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tonbox_check_ins_total",
			Help: "Successful daily check-ins.",
		}),
		taskCompletions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tonbox_task_completions_total",
			Help: "One-time task rewards granted.",
		}, []string{"task"}),
		nftClaims: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tonbox_nft_claims_total",
			Help: "Successful NFT claims.",
		}, []string{"collection"}),
		achievementUnlocks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tonbox_achievement_unlocks_total",
			Help: "Achievements unlocked.",
		}, []string{"achievement"}),
		paymentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tonbox_payment_failures_total",
			Help: "Payment attempts that failed before any ledger mutation.",
		}),
		boosterPurchases: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tonbox_booster_purchases_total",
			Help: "Point booster purchases.",
		}),
	}
}

func (m *Metrics) RecordReferralApplied() {
	if m == nil {
		return
	}
	m.referralsApplied.Inc()
}

func (m *Metrics) RecordTierUnlock(title string) {
	if m == nil {
		return
	}
	m.tierUnlocks.WithLabelValues(title).Inc()
}

func (m *Metrics) RecordCheckIn() {
	if m == nil {
		return
	}
	m.checkIns.Inc()
}

func (m *Metrics) RecordTaskCompletion(task string) {
	if m == nil {
		return
	}
	m.taskCompletions.WithLabelValues(task).Inc()
}

func (m *Metrics) RecordNFTClaim(collection string) {
	if m == nil {
		return
	}
	m.nftClaims.WithLabelValues(collection).Inc()
}

func (m *Metrics) RecordAchievementUnlock(achievement string) {
	if m == nil {
		return
	}
	m.achievementUnlocks.WithLabelValues(achievement).Inc()
}

func (m *Metrics) RecordPaymentFailure() {
	if m == nil {
		return
	}
	m.paymentFailures.Inc()
}

func (m *Metrics) RecordBoosterPurchase() {
	if m == nil {
		return
	}
	m.boosterPurchases.Inc()
}

// HTTPMetrics instruments inbound requests.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tonbox_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.duration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
