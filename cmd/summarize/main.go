// Command summarize runs only the summarization stage of an episode:
// articles/article_<n>.txt in, summaries/summary_<i>.txt out.
//
// Usage:
//
//	summarize [-config newscast.yaml] <episode> <articles>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"newscast/internal/app"
	"newscast/internal/config"
	"newscast/internal/episode"
	"newscast/internal/observability/logging"
	"newscast/internal/usecase/summarize"
)

func main() {
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "optional YAML configuration file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: summarize [-config file] <episode> <articles>")
		flag.PrintDefaults()
	}
	flag.Parse()

	number, articles, err := parseArgs(flag.Args())
	if err != nil {
		flag.Usage()
		logger.Error("invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, number, articles); err != nil {
		logger.Error("summarization failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func parseArgs(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	number, err := strconv.Atoi(args[0])
	if err != nil || number < 1 {
		return 0, 0, fmt.Errorf("episode must be a positive integer, got %q", args[0])
	}
	articles, err := strconv.Atoi(args[1])
	if err != nil || articles < 1 {
		return 0, 0, fmt.Errorf("articles must be a positive integer, got %q", args[1])
	}
	return number, articles, nil
}

func run(ctx context.Context, logger *slog.Logger, configPath string, number, articles int) error {
	cfg, err := config.LoadForSummarization(configPath, logger)
	if err != nil {
		return err
	}
	endpoint, err := app.NewEndpoint(cfg.Summarizer)
	if err != nil {
		return err
	}
	sc, err := app.SummarizeConfig(cfg)
	if err != nil {
		return err
	}

	layout := episode.NewLayout(cfg.OutputDir, number)
	ctx = logging.WithRunID(logging.WithLogger(ctx, logger), logging.NewRunID())
	stats, err := summarize.NewService(endpoint, sc).SummarizeEpisode(ctx, layout, articles)
	if err != nil {
		return err
	}
	logger.Info("summaries written",
		slog.String("folder", layout.SummariesDir()),
		slog.Int64("summarized", stats.Summarized),
		slog.Int64("failed", stats.Failed))
	return nil
}
