package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
// It includes counters for telegram updates, conversation inputs, sent messages and bookings,
// a gauge of live conversations, and histograms for gateway and report durations.
type Metrics struct {
	UpdatesReceived  *prometheus.CounterVec   // Counter for telegram updates per kind
	InputsReceived   *prometheus.CounterVec   // Counter for user inputs per conversation step
	SentMessages     *prometheus.CounterVec   // Counter for sent messages
	BookingsCreated  prometheus.Counter       // Counter for persisted bookings
	BookingFailures  *prometheus.CounterVec   // Counter for failed booking submissions
	ActiveSessions   prometheus.Gauge         // Gauge for conversations held in memory
	GatewayDuration  *prometheus.HistogramVec // Histogram for slot/booking gateway calls
	DBQueryDuration  *prometheus.HistogramVec // Histogram for database query durations
	ReportGeneration prometheus.Histogram     // Histogram for daily report generation
}

// NewMetrics creates a new Metrics instance with the provided Prometheus Registerer.
//
// Parameters:
//   - reg: A Prometheus Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		UpdatesReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stylebook_updates_received_total",
			Help: "Incoming bot activity",
		}, []string{"kind"}), // kind: command, text, callback
		InputsReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stylebook_inputs_received_total",
			Help: "Total number of user inputs handled by the conversation engine",
		}, []string{"step"}), // step: welcome, name, phone, date...
		SentMessages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stylebook_messages_sent_total",
			Help: "Output bot activity",
		}, []string{"type"}), // type: text, picker, photo, document, error
		BookingsCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "stylebook_bookings_created_total",
			Help: "Total number of bookings persisted through the gateway",
		}),
		BookingFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stylebook_booking_failures_total",
			Help: "Total number of booking submissions that failed",
		}, []string{"reason"}), // reason: slot_taken, gateway
		ActiveSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "stylebook_active_sessions",
			Help: "Number of conversations held in memory",
		}),
		GatewayDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stylebook_gateway_duration_seconds",
			Help:    "Duration of slot lookups, booking creation and report calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}), // operation: get_slots, create_booking, daily_report
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stylebook_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: booked_slots, insert_booking, bookings_by_date
		ReportGeneration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "stylebook_report_generation_duration_seconds",
			Help: "Duration of daily report excel generation.",
		}),
	}
}
