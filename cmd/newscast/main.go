// Command newscast produces one podcast episode.
//
// Usage:
//
//	newscast [-config newscast.yaml] [-stages collect,summarize,...] <episode> <articles>
//	newscast -auth-youtube
//
// An episode of 0 picks the number after the highest existing episode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"newscast/internal/app"
	"newscast/internal/config"
	"newscast/internal/episode"
	"newscast/internal/infra/youtube"
	"newscast/internal/observability/logging"
	"newscast/internal/pipeline"
)

type options struct {
	configPath  string
	episode     int
	articles    int
	stages      string
	authYouTube bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("newscast", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "optional YAML configuration file")
	fs.IntVar(&opts.episode, "episode", 0, "episode number (0 picks the next one)")
	fs.IntVar(&opts.articles, "articles", 0, "number of articles (0 uses the configured default)")
	fs.StringVar(&opts.stages, "stages", "all", "comma separated stages: "+strings.Join(pipeline.Order, ","))
	fs.BoolVar(&opts.authYouTube, "auth-youtube", false, "authorize YouTube uploads and save the token")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: newscast [flags] [<episode> <articles>]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 2:
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 1 {
			return opts, fmt.Errorf("episode must be a positive integer, got %q", rest[0])
		}
		a, err := strconv.Atoi(rest[1])
		if err != nil || a < 1 {
			return opts, fmt.Errorf("articles must be a positive integer, got %q", rest[1])
		}
		opts.episode, opts.articles = n, a
	default:
		fs.Usage()
		return opts, fmt.Errorf("expected <episode> <articles>, got %d arguments", len(rest))
	}

	if opts.episode < 0 || opts.articles < 0 {
		return opts, errors.New("episode and articles must not be negative")
	}
	return opts, nil
}

func main() {
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error("invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("newscast failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := config.Load(opts.configPath, logger)
	if err != nil {
		return err
	}

	if opts.authYouTube {
		if err := youtube.Authorize(ctx, app.AuthConfig(cfg), os.Stdin, os.Stdout); err != nil {
			return fmt.Errorf("youtube authorization: %w", err)
		}
		logger.Info("youtube token saved", slog.String("path", cfg.YouTube.TokenFile))
		return nil
	}

	stages, err := pipeline.ParseStages(opts.stages)
	if err != nil {
		return err
	}

	number := opts.episode
	if number == 0 {
		if number, err = episode.NextEpisode(cfg.OutputDir); err != nil {
			return err
		}
	}
	articles := opts.articles
	if articles == 0 {
		articles = cfg.Articles
	}

	p, err := app.BuildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx = logging.WithLogger(ctx, logger)
	res, err := p.Run(ctx, number, articles, stages)
	if err != nil {
		return err
	}
	logger.Info("done",
		slog.Int("episode", res.Episode),
		slog.String("stages", strings.Join(res.Completed, ",")),
		slog.Duration("duration", res.Duration))
	return nil
}
