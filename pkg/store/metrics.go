package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricMessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_messages_appended_total",
		Help: "Messages appended across all conversations.",
	})
	metricMessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_messages_deleted_total",
		Help: "Messages deleted by the operator or retention.",
	})
	metricReactionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_reactions_applied_total",
		Help: "Reaction toggles applied to messages.",
	})
	metricSeenMarks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_seen_marks_total",
		Help: "Seen-by entries recorded.",
	})
	metricSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatsim_snapshot_save_failures_total",
		Help: "Persistence snapshot writes that failed (mutation retained in memory).",
	})
)
