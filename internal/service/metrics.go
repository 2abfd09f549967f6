package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики сервиса; отдаются наружу через /metrics служебного HTTP-сервера.
var (
	metricAPICalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_api_calls_total",
		Help: "Calls made against the external search API.",
	})

	metricItemsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_items_fetched_total",
		Help: "Items returned by the external search API, duplicates included.",
	})

	metricItemsFresh = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_items_fresh_total",
		Help: "Fresh items collected by fetch runs.",
	})

	metricDuplicatesFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_duplicates_filtered_total",
		Help: "Items dropped by the dedup gate.",
	})

	metricCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_cache_lookups_total",
		Help: "Search cache lookups by outcome.",
	}, []string{"outcome"})

	metricQueueEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_queue_enqueued_total",
		Help: "Items accepted into the work queue.",
	})

	metricQueueDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_queue_duplicate_enqueues_total",
		Help: "Enqueue attempts ignored as duplicates.",
	})

	metricQueueClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_queue_claimed_total",
		Help: "Items claimed for processing.",
	})

	metricQueueCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_queue_completed_total",
		Help: "Items processed to completion.",
	})

	metricQueueFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_queue_failures_total",
		Help: "Processing failures by outcome (retry/terminal).",
	}, []string{"outcome"})
)
