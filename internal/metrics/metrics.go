package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	UsersUpserted       prometheus.Counter
	SightingsLogged     prometheus.Counter
	LifersLogged        prometheus.Counter
	ChecklistItemsFound prometheus.Counter
	StatsDuration       prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersUpserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdfolio_users_upserted_total",
			Help: "Total number of user create-or-update calls",
		}),
		SightingsLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdfolio_sightings_logged_total",
			Help: "Total number of sightings logged",
		}),
		LifersLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdfolio_lifers_logged_total",
			Help: "Total number of sightings that were a user's first of the species",
		}),
		ChecklistItemsFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "birdfolio_checklist_items_found_total",
			Help: "Total number of checklist items marked found",
		}),
		StatsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "birdfolio_stats_duration_seconds",
			Help:    "Duration of stats aggregation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementSightingsLogged records a logged sighting and whether it was a lifer
func (m *Metrics) IncrementSightingsLogged(lifer bool) {
	m.SightingsLogged.Inc()
	if lifer {
		m.LifersLogged.Inc()
	}
}

// ObserveStats records the duration of a stats computation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStats(start time.Time) {
	m.StatsDuration.Observe(time.Since(start).Seconds())
}
