package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/console"
	"github.com/mind-engage/mindengage-quiz/internal/devapi"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/web"
)

// Set at build time with -ldflags.
var Version = "v0.1.0"

func main() {
	cmd := &cli.Command{
		Name:    "quiz",
		Usage:   "take quizzes against a quiz API, in the browser or the terminal",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file (QUIZ_* env vars override it)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web front end",
				Action: serveAction,
			},
			{
				Name:   "devapi",
				Usage:  "run the in-memory reference quiz API",
				Action: devapiAction,
			},
			{
				Name:   "list",
				Usage:  "print the quiz catalog",
				Action: listAction,
			},
			{
				Name:      "play",
				Usage:     "take a quiz in the terminal",
				ArgsUsage: "<quizID>",
				Action:    playAction,
			},
			{
				Name:      "result",
				Usage:     "print the result of a finished attempt",
				ArgsUsage: "<attemptID>",
				Action:    resultAction,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "quiz: %v\n", err)
		os.Exit(1)
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	opts, err := a.flowOptions()
	if err != nil {
		return err
	}
	reg := web.NewRegistry(a.cfg.SessionTTL)
	go reg.Run(ctx, time.Minute)

	h, err := web.NewRouter(web.Deps{
		API:            a.api,
		Sessions:       session.NewSigner(a.cfg.SessionSecret, a.cfg.SessionTTL),
		Registry:       reg,
		Metrics:        a.metrics,
		Log:            a.log,
		FlowOptions:    opts,
		CORSOrigins:    a.cfg.CORSOrigins,
		SecureCookies:  a.cfg.Mode == config.ModeProd,
		RequestTimeout: 3*a.cfg.RequestTimeout + a.cfg.FeedbackDelay,
	})
	if err != nil {
		return err
	}
	a.log.Info("web front end starting", "mode", a.cfg.Mode, "api", a.cfg.APIBaseURL)
	return web.Serve(ctx, a.cfg.HTTPAddr, h, a.log)
}

func devapiAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	seed, err := devapi.LoadSeed(a.cfg.DevAPISeed)
	if err != nil {
		return err
	}
	a.log.Info("reference quiz API starting", "quizzes", len(seed), "seed", a.cfg.DevAPISeed)
	h := devapi.NewRouter(devapi.NewStore(seed), a.log, a.cfg.CORSOrigins)
	return web.Serve(ctx, a.cfg.DevAPIAddr, h, a.log)
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.log.Sync()
	return console.New(a.api, os.Stdin, os.Stdout).Catalog(ctx)
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	quizID := cmd.Args().First()
	if quizID == "" {
		return errors.New("play: quiz id required")
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	opts, err := a.flowOptions()
	if err != nil {
		return err
	}
	_, err = console.New(a.api, os.Stdin, os.Stdout, opts...).Play(ctx, quiz.ID(quizID))
	if errors.Is(err, console.ErrQuit) {
		return nil
	}
	return err
}

func resultAction(ctx context.Context, cmd *cli.Command) error {
	attemptID := cmd.Args().First()
	if attemptID == "" {
		return errors.New("result: attempt id required")
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.log.Sync()
	return console.New(a.api, os.Stdin, os.Stdout).Result(ctx, quiz.ID(attemptID))
}
