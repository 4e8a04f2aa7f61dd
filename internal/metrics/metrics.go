// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "areasense"

var (
	AreaResolves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "area_resolve_total",
		Help:      "Coordinate resolutions by result (boundary, centroid, not_found, invalid)",
	}, []string{"result"})

	AreaIndexSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "area_index_size",
		Help:      "Number of areas in the published index",
	})

	AreaReindexes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "area_reindex_total",
		Help:      "Area index rebuilds by trigger and status",
	}, []string{"trigger", "status"})

	TipSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tip_submissions_total",
		Help:      "Tip submissions by result (accepted, invalid)",
	}, []string{"result"})

	TipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tip_transitions_total",
		Help:      "Moderation decisions by resulting status",
	}, []string{"status"})

	TipVotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tip_votes_total",
		Help:      "Accepted vote events by direction",
	}, []string{"direction"})

	DispatchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_dispatch_attempts_total",
		Help:      "URI dispatch attempts by via, target and result",
	}, []string{"via", "target", "result"})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Background jobs by type and outcome",
	}, []string{"type", "outcome"})
)

func Handler() http.Handler { return promhttp.Handler() }
