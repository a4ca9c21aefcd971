package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UnknownLabel replaces label values that failed validation.
const UnknownLabel = "unknown"

var (
	// status: success/invalid/error
	ExamSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_submissions_total",
			Help: "Total number of exam submissions",
		},
		[]string{"status", "category"},
	)

	// Attempts saved without a link in the user's exam history.
	HistoryLinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_history_link_failures_total",
			Help: "Total number of exam attempts that could not be linked into user history",
		},
		[]string{"reason"},
	)

	// result: linked/abandoned
	HistoryReconciled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_history_reconciled_total",
			Help: "Total number of pending history links resolved by the reconciler",
		},
		[]string{"result"},
	)

	ScorePercentage = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exam_score_percentage",
			Help:    "Distribution of attempt scores as a percentage of marks possible",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"category"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exam_submission_duration_seconds",
			Help:    "Time spent scoring and recording a submission",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReviewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_review_requests_total",
			Help: "Total number of exam review requests",
		},
		[]string{"status", "source"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_media_uploads_total",
			Help: "Total number of question media uploads",
		},
		[]string{"kind", "status"},
	)

	// 1 while the RabbitMQ connection is up, 0 while disabled or reconnecting.
	EventBrokerConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exam_event_broker_connected",
			Help: "Whether the event publisher currently holds a RabbitMQ connection",
		},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_event_publish_failures_total",
			Help: "Total number of domain events that could not be published",
		},
		[]string{"event"},
	)
)
