package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/identity"
	"github.com/mind-engage/mindengage-quiz/internal/metrics"
	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
)

type app struct {
	cfg     config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	api     *quizapi.Client
}

func newApp(cmd *cli.Command, withMetrics bool) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{Mode: string(cfg.Mode), Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a := &app{cfg: cfg, log: log.With("cmd", cmd.Name)}

	apiCfg := quizapi.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.RequestTimeout, Logger: a.log}
	if withMetrics {
		a.metrics = metrics.New()
		apiCfg.Observer = a.metrics
	}
	if a.api, err = quizapi.New(apiCfg); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) flowOptions() ([]attempt.Option, error) {
	ids, err := identity.FromName(a.cfg.Identity)
	if err != nil {
		return nil, err
	}
	return []attempt.Option{
		attempt.WithIdentity(ids),
		attempt.WithLogger(a.log),
		attempt.WithFeedbackDelay(a.cfg.FeedbackDelay),
	}, nil
}
