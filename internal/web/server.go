// Package web serves the catalog, attempt and result views as server-rendered
// HTML. Attempt state lives in-process per browser session; every read and
// write of quiz data goes to the quiz API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/metrics"
	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
	"github.com/mind-engage/mindengage-quiz/internal/result"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

// API is everything the three views need from the quiz API.
type API interface {
	catalog.Lister
	result.Fetcher
	attempt.API
}

type Deps struct {
	API         API
	Sessions    *session.Signer
	Registry    *Registry
	Metrics     *metrics.Metrics // optional
	Log         *logger.Logger
	FlowOptions []attempt.Option

	CORSOrigins   []string
	SecureCookies bool
	// RequestTimeout bounds a whole request, including the feedback pause.
	RequestTimeout time.Duration
}

func NewRouter(d Deps) (http.Handler, error) {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(d.RequestTimeout))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Group(func(sr chi.Router) {
		sr.Use(d.Sessions.Middleware(d.Log, d.SecureCookies))

		sr.Get("/", CatalogHandler(d.API, d.Registry, v, d.Log))
		sr.Route("/quiz/{quizID}", func(qr chi.Router) {
			qr.Get("/", QuizHandler(&d, v))
			qr.Post("/select", SelectHandler(&d))
			qr.Post("/submit", SubmitHandler(&d))
			qr.Post("/previous", PreviousHandler(&d))
			qr.Post("/goto", GoToHandler(&d))
		})
		sr.Get("/result/{attemptID}", ResultHandler(d.API, v, d.Log))
	})
	return r, nil
}

// Serve runs h on addr until ctx is cancelled, then drains for up to five
// seconds.
func Serve(ctx context.Context, addr string, h http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
