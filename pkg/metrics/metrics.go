package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "flocknet", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "flocknet", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	TwoFactorUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "flocknet", Name: "twofactor_updates_total", Help: "Number of two-factor config changes by action (enable|disable)."},
		[]string{"action"},
	)
	TrendingComputations = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "flocknet", Name: "trending_computations_total", Help: "Number of trending hashtag aggregations performed."},
	)
	PostsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "flocknet", Name: "posts_created_total", Help: "Number of posts created."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(TwoFactorUpdates)
	reg.MustRegister(TrendingComputations)
	reg.MustRegister(PostsCreated)
}
