package metrics

import "github.com/prometheus/client_golang/prometheus"

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)

var TraceRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trace_runs_total",
		Help: "Total number of contact-trace fan-out runs",
	},
	[]string{"status"},
)

var TraceRunDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "trace_run_duration_seconds",
		Help:    "Wall time of a full contact-trace fan-out run",
		Buckets: prometheus.DefBuckets,
	},
)

var ContactsNotifiedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trace_contacts_notified_total",
		Help: "Contacts dispatched per channel and outcome",
	},
	[]string{"channel", "status"},
)

var ContactsDedupedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trace_contacts_deduped_total",
		Help: "Contacts skipped because they were already processed in the run",
	},
	[]string{"channel"},
)

var ResolverFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "trace_resolver_failures_total",
		Help: "Conditions skipped because the contact resolver failed",
	},
)

var NotificationSendDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "notification_send_duration_seconds",
		Help:    "Time taken to send notifications via external providers",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider", "channel"},
)

var ExternalAPISuccess = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "external_api_success_total",
		Help: "Successful calls to external providers",
	},
	[]string{"provider", "service"},
)

var ExternalAPIFailure = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "external_api_failure_total",
		Help: "Failed calls to external providers",
	},
	[]string{"provider", "service"},
)

var NotificationDLQTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_dlq_total",
		Help: "Total number of notifications sent to DLQ",
	},
	[]string{"reason", "channel"},
)

var KafkaPublisherSuccess = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_publish_success_total",
		Help: "Total number of successful Kafka publishes",
	},
	[]string{"topic"},
)

var KafkaPublisherFailure = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_publish_failure_total",
		Help: "Total number of failed Kafka publishes",
	},
	[]string{"topic"},
)

var KafkaSubscriberFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_subscribe_failure_total",
		Help: "Total number of failed Kafka reads",
	},
	[]string{"topic"},
)

var KafkaConsumerLag = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "kafka_consumer_lag",
		Help: "Current consumer lag per group and topic",
	},
	[]string{"group", "topic"},
)

var KafkaRebalancesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_rebalances_total",
		Help: "Total number of consumer group joins",
	},
	[]string{"group"},
)

func InitAPIMetrics() {
	prometheus.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		HttpErrorsTotal,
		HttpRateLimitRejectionsTotal,
		TraceRunsTotal,
		TraceRunDuration,
		ContactsNotifiedTotal,
		ContactsDedupedTotal,
		ResolverFailuresTotal,
		NotificationSendDuration,
		ExternalAPISuccess,
		ExternalAPIFailure,
	)
}

func InitWorkerMetrics() {
	prometheus.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		HttpErrorsTotal,
		NotificationSendDuration,
		ExternalAPISuccess,
		ExternalAPIFailure,
		NotificationDLQTotal,
	)
}

func InitKafkaMetrics() {
	prometheus.MustRegister(
		KafkaPublisherSuccess,
		KafkaPublisherFailure,
		KafkaSubscriberFailureTotal,
		KafkaConsumerLag,
		KafkaRebalancesTotal,
	)
}
