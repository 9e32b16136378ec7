package metrics

import (
	"errors"
	"sync"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	engineOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson_scheduler",
			Name:      "engine_operations_total",
			Help:      "Count of booking engine operations by result.",
		},
		[]string{"operation", "result"},
	)

	journalPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lesson_scheduler",
			Name:      "journal_pending_changes",
			Help:      "Changes recorded but not yet flushed to the database.",
		},
	)

	flushFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lesson_scheduler",
			Name:      "journal_flush_failures_total",
			Help:      "Count of failed journal flushes.",
		},
	)

	flushedChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lesson_scheduler",
			Name:      "journal_flushed_changes_total",
			Help:      "Count of changes written to the database.",
		},
	)

	droppedChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lesson_scheduler",
			Name:      "journal_dropped_changes_total",
			Help:      "Count of changes permanently rejected by the database and dropped.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(engineOperations, journalPending, flushFailures, flushedChanges, droppedChanges)
	})
}

// Result classifies an engine error into a metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	case errors.Is(err, model.ErrSlotNoLongerAvailable):
		return "slot_no_longer_available"
	case errors.Is(err, model.ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, model.ErrInvalidStateTransition):
		return "invalid_transition"
	}
	return "error"
}

func ObserveOperation(operation string, err error) {
	engineOperations.WithLabelValues(operation, Result(err)).Inc()
}

func SetJournalPending(n int) {
	journalPending.Set(float64(n))
}

func IncFlushFailure() {
	flushFailures.Inc()
}

func AddFlushed(n int) {
	flushedChanges.Add(float64(n))
}

func IncDropped() {
	droppedChanges.Inc()
}
