// Package metrics exposes housing store activity as Prometheus series.
package metrics

import (
	"errors"

	"hostel-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostel"

// Recorder implements housing.Recorder on its own registry.
type Recorder struct {
	registry        *prometheus.Registry
	mutations       *prometheus.CounterVec
	persistFailures prometheus.Counter
	beds            *prometheus.GaugeVec
	applications    *prometheus.GaugeVec
	safetyScore     *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Housing store mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Snapshots swapped in memory but not written to the slot.",
		}),
		beds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "beds",
			Help:      "Beds across all listings by status.",
		}, []string{"status"}),
		applications: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "applications",
			Help:      "Applications by review status.",
		}, []string{"status"}),
		safetyScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listing_safety_score",
			Help:      "Current safety score per listing.",
		}, []string{"listing"}),
	}
	r.registry.MustRegister(
		r.mutations, r.persistFailures, r.beds, r.applications, r.safetyScore,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Outcome classifies a mutation error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrFloorNotFound),
		errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrBedNotFound),
		errors.Is(err, domain.ErrApplicationNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRoomFull), errors.Is(err, domain.ErrBedOccupied),
		errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrDuplicateRoom):
		return "conflict"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStructure),
		errors.Is(err, domain.ErrUnknownFeature):
		return "invalid"
	default:
		return "error"
	}
}

func (r *Recorder) ObserveMutation(op string, err error) {
	r.mutations.WithLabelValues(op, Outcome(err)).Inc()
}

func (r *Recorder) ObservePersistFailure() {
	r.persistFailures.Inc()
}

func (r *Recorder) ObserveSnapshot(snap domain.Snapshot) {
	var occupied, empty int
	r.safetyScore.Reset()
	for _, l := range snap.Listings {
		r.safetyScore.WithLabelValues(l.ID).Set(float64(l.SafetyScore))
		for _, f := range l.Floors {
			for _, rm := range f.Rooms {
				for _, b := range rm.Beds {
					if b.Occupied() {
						occupied++
					} else {
						empty++
					}
				}
			}
		}
	}
	r.beds.WithLabelValues(string(domain.BedOccupied)).Set(float64(occupied))
	r.beds.WithLabelValues(string(domain.BedEmpty)).Set(float64(empty))

	counts := map[domain.ApplicationStatus]int{
		domain.StatusApplied: 0, domain.StatusVerified: 0, domain.StatusApproved: 0, domain.StatusRejected: 0,
	}
	for _, a := range snap.Applications {
		counts[a.Status]++
	}
	for status, n := range counts {
		r.applications.WithLabelValues(string(status)).Set(float64(n))
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
