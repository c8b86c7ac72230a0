package responder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatsim_responder_replies_total",
		Help: "Autoresponder replies by outcome (matched or fallback).",
	}, []string{"outcome"})
	metricDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_responder_dropped_total",
		Help: "Scheduled responder effects dropped because the target was gone.",
	})
	metricRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_responder_rate_limited_total",
		Help: "Responder invocations skipped by the per-conversation rate limit.",
	})
)
