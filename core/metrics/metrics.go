package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinator_auth_results_total",
		Help: "Token authentication outcomes, labelled by reason (ok when accepted).",
	}, []string{"reason"})

	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coordinator_tokens_issued_total",
		Help: "Total number of tokens issued by the auth service.",
	})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinator_login_attempts_total",
		Help: "Login attempts, labelled by outcome.",
	}, []string{"outcome"})

	CheckinUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinator_checkin_updates_total",
		Help: "Check-in update requests, labelled by outcome.",
	}, []string{"outcome"})

	BroadcastDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coordinator_broadcast_delivered_total",
		Help: "Messages handed to a subscriber buffer.",
	})

	BroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coordinator_broadcast_dropped_total",
		Help: "Messages dropped because a subscriber buffer was full.",
	})

	ActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coordinator_checkin_subscribers",
		Help: "Current number of check-in topic subscriptions.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coordinator_checkin_sessions",
		Help: "Current number of open check-in websocket sessions.",
	})
)
