// Package metrics holds the Prometheus counters of the content service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contentdesk"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups every counter. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ActivityRecorded  *prometheus.CounterVec
	BookmarkToggles   *prometheus.CounterVec
	CollectionLoads   *prometheus.CounterVec
	CommentSubmission *prometheus.CounterVec
}

// New creates and registers the counters on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ActivityRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_recorded_total",
			Help:      "Activity events sent to the backend, by kind and result",
		}, []string{"kind", "result"}),
		BookmarkToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmark_toggles_total",
			Help:      "Bookmark toggles, by resulting state (saved or removed)",
		}, []string{"state"}),
		CollectionLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_loads_total",
			Help:      "Collection loads from fixtures or registered sources",
		}, []string{"collection", "result"}),
		CommentSubmission: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_submissions_total",
			Help:      "Comment submissions, by result (ok, error, rejected)",
		}, []string{"result"}),
	}
}

func (m *Metrics) Activity(kind string, err error) {
	if m == nil {
		return
	}
	m.ActivityRecorded.WithLabelValues(kind, result(err)).Inc()
}

func (m *Metrics) Bookmark(saved bool) {
	if m == nil {
		return
	}
	state := "removed"
	if saved {
		state = "saved"
	}
	m.BookmarkToggles.WithLabelValues(state).Inc()
}

func (m *Metrics) CollectionLoad(collection string, err error) {
	if m == nil {
		return
	}
	m.CollectionLoads.WithLabelValues(collection, result(err)).Inc()
}

// Comment records a submission outcome; rejected submissions never reached the backend.
func (m *Metrics) Comment(outcome string) {
	if m == nil {
		return
	}
	m.CommentSubmission.WithLabelValues(outcome).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
