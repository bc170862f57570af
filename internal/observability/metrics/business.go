package metrics

import (
	"time"
)

// RecordHeadlinesFetched records the number of headlines returned by a headline source.
func RecordHeadlinesFetched(source string, count int) {
	HeadlinesFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordArticleCollected records the outcome for one headline in stage 1.
// Result should be one of "saved", "skipped" or "failed".
func RecordArticleCollected(result string) {
	ArticlesCollectedTotal.WithLabelValues(result).Inc()
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), text.CountRunes(content))
//	}
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordArticleSummarized records the result of an article summarization operation.
func RecordArticleSummarized(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	ArticlesSummarizedTotal.WithLabelValues(status).Inc()
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordChunks records how many chunks an article body produced.
func RecordChunks(count int) {
	ChunksPerArticle.Observe(float64(count))
}

// RecordSummarizeCall records one logical summarize call.
// Kind is "single", "chunk" or "combine"; fallback marks a passthrough result.
func RecordSummarizeCall(kind string, attempts int, fallback bool) {
	outcome := "success"
	if fallback {
		outcome = "fallback"
	}
	SummarizeCallsTotal.WithLabelValues(kind, outcome).Inc()
	SummarizeAttempts.Observe(float64(attempts))
}

// RecordSummarizeFallback records a give-up that returned the input text.
func RecordSummarizeFallback(reason string) {
	SummarizeFallbackTotal.WithLabelValues(reason).Inc()
}

// RecordStage records the duration and status of a pipeline stage run.
func RecordStage(stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	StageRunsTotal.WithLabelValues(stage, status).Inc()
}

// RecordEpisode records the final status of an episode run.
func RecordEpisode(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	EpisodesTotal.WithLabelValues(status).Inc()
}
