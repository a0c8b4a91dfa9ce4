package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// NewRouter mounts the quiz API under /api/quizzes.
func NewRouter(store *Store, log *logger.Logger, corsOrigins []string) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api/quizzes", func(qr chi.Router) {
		qr.Get("/", ListQuizzesHandler(store))
		qr.Get("/{quizID}", GetQuizHandler(store))
		qr.Post("/{quizID}/attempt/start", StartAttemptHandler(store, log))
		qr.Post("/attempt/{attemptID}/response", SaveResponseHandler(store))
		qr.Post("/attempt/{attemptID}/submit", SubmitAttemptHandler(store, log))
		qr.Get("/attempt/{attemptID}/result", GetResultHandler(store))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	return r
}

// param unescapes a route segment; chi matches on the raw path when the
// client escaped characters such as '/'.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrQuizNotFound), errors.Is(err, ErrAttemptNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrAttemptClosed), errors.Is(err, ErrAttemptOpen):
		status = http.StatusConflict
	case errors.Is(err, ErrUnknownQuestion), errors.Is(err, ErrUnknownOption):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

// GET /api/quizzes
func ListQuizzesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.List())
	}
}

// GET /api/quizzes/{quizID}
func GetQuizHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Quiz(param(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /api/quizzes/{quizID}/attempt/start?userId=
func StartAttemptHandler(store *Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			http.Error(w, "userId required", http.StatusBadRequest)
			return
		}
		quizID := param(r, "quizID")
		id, err := store.StartAttempt(quizID, userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		log.Info("attempt started", "quiz_id", quizID, "attempt_id", id, "user_id", userID)
		writeJSON(w, http.StatusOK, map[string]string{"attemptId": id})
	}
}

// POST /api/quizzes/attempt/{attemptID}/response
func SaveResponseHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ans quiz.Answer
		if err := json.NewDecoder(r.Body).Decode(&ans); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if ans.QuestionID == "" || ans.SelectedOptionID == "" {
			http.Error(w, "questionId and selectedOptionId required", http.StatusBadRequest)
			return
		}
		if err := store.SaveResponse(param(r, "attemptID"), ans); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	}
}

// POST /api/quizzes/attempt/{attemptID}/submit
func SubmitAttemptHandler(store *Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := param(r, "attemptID")
		res, err := store.Submit(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		log.Info("attempt submitted", "attempt_id", id, "score", res.Score)
		writeJSON(w, http.StatusOK, map[string]string{"status": "submitted"})
	}
}

// GET /api/quizzes/attempt/{attemptID}/result
func GetResultHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.Result(param(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
