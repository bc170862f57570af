// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collection metrics track stage 1 (headlines and full-text extraction)
var (
	// HeadlinesFetchedTotal counts headlines returned by each headline source
	HeadlinesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_headlines_fetched_total",
			Help: "Total number of headlines returned by headline sources",
		},
		[]string{"source"},
	)

	// ArticlesCollectedTotal counts collected articles by result
	ArticlesCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_articles_collected_total",
			Help: "Total number of headlines processed into article files",
		},
		[]string{"result"}, // result: saved, skipped, failed
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newscast_content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures extracted content size in characters
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newscast_content_fetch_size_characters",
			Help:    "Extracted article content size in characters",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		},
	)
)

// Summarization metrics track stage 2
var (
	// ArticlesSummarizedTotal counts articles summarized by status
	ArticlesSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_articles_summarized_total",
			Help: "Total number of articles summarized",
		},
		[]string{"status"}, // status: success, failure
	)

	// SummarizationDuration measures time to summarize an article
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newscast_article_summarization_duration_seconds",
			Help:    "Time taken to summarize an article including all chunk and combine calls",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// ChunksPerArticle measures how many chunks each summarized article produced
	ChunksPerArticle = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newscast_summarize_chunks_per_article",
			Help:    "Number of chunks an article body was split into",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 32},
		},
	)

	// SummarizeCallsTotal counts logical summarize calls by kind and outcome
	SummarizeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_summarize_calls_total",
			Help: "Total number of summarize client calls",
		},
		[]string{"kind", "outcome"}, // kind: single, chunk, combine; outcome: success, fallback
	)

	// SummarizeAttempts measures remote attempts needed per summarize call
	SummarizeAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newscast_summarize_attempts",
			Help:    "Number of remote attempts made per summarize call",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		},
	)

	// SummarizeFallbackTotal counts calls that gave up and passed the input through
	SummarizeFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_summarize_fallback_total",
			Help: "Total number of summarize calls that returned the fallback passthrough",
		},
		[]string{"reason"}, // reason: exhausted, request_error, canceled
	)
)

// Pipeline metrics track stage execution and episodes
var (
	// StageDuration measures how long each pipeline stage takes
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newscast_stage_duration_seconds",
			Help:    "Time taken by a pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"stage"},
	)

	// StageRunsTotal counts stage runs by status
	StageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_stage_runs_total",
			Help: "Total number of pipeline stage runs",
		},
		[]string{"stage", "status"},
	)

	// EpisodesTotal counts produced episodes by status
	EpisodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newscast_episodes_total",
			Help: "Total number of episode runs",
		},
		[]string{"status"},
	)
)
