package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/result"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

func quizURL(id quiz.ID) string   { return "/quiz/" + url.PathEscape(string(id)) }
func resultURL(id quiz.ID) string { return "/result/" + url.PathEscape(string(id)) }

// idParam reads an id from the route. chi matches on the raw path when the
// request carries escapes such as %2F, so the segment may still be escaped.
func idParam(r *http.Request, name string) quiz.ID {
	raw := chi.URLParam(r, name)
	if id, err := url.PathUnescape(raw); err == nil {
		return quiz.ID(id)
	}
	return quiz.ID(raw)
}

func renderOrFail(w http.ResponseWriter, v *views, log *logger.Logger, status int, name string, data page) {
	if err := v.render(w, status, name, data); err != nil {
		log.Error("render view", "view", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// GET /
func CatalogHandler(api catalog.Lister, reg *Registry, v *views, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := session.ID(r)
		listing, err := catalog.Load(r.Context(), api)
		if err != nil {
			log.Warn("catalog load failed", "error", err)
			renderOrFail(w, v, log, http.StatusBadGateway, "error", page{
				Heading:  "Oops!",
				Message:  catalog.MsgLoadFailed,
				RetryURL: "/",
			})
			return
		}
		renderOrFail(w, v, log, http.StatusOK, "catalog", page{
			Flash:   reg.TakeFlash(sid),
			Listing: listing,
		})
	}
}

// GET /quiz/{quizID}: resume this session's flow for the quiz, or start one.
func QuizHandler(d *Deps, v *views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := session.ID(r)
		quizID := idParam(r, "quizID")

		f, err := d.Registry.Start(r.Context(), sid, quizID, func() *attempt.Flow {
			return attempt.NewFlow(d.API, quizID, d.FlowOptions...)
		})
		if err != nil {
			renderInitError(w, v, d.Log, quizID, err)
			return
		}
		renderOrFail(w, v, d.Log, http.StatusOK, "quiz", page{
			Flash:   d.Registry.TakeFlash(sid),
			View:    f.Snapshot(),
			QuizURL: quizURL(quizID),
		})
	}
}

func renderInitError(w http.ResponseWriter, v *views, log *logger.Logger, quizID quiz.ID, err error) {
	var ae *attempt.Error
	if errors.As(err, &ae) && ae.Kind == attempt.EmptyQuizFailure {
		renderOrFail(w, v, log, http.StatusOK, "error", page{Heading: "No Questions", Message: ae.Message()})
		return
	}
	status := http.StatusBadGateway
	if quizapi.IsNotFound(err) {
		status = http.StatusNotFound
	}
	renderOrFail(w, v, log, status, "error", page{
		Heading:  "Error",
		Message:  attempt.UserMessage(err),
		RetryURL: quizURL(quizID),
	})
}

// withFlow runs fn against the session's flow for {quizID}. Without one the
// browser is sent to the quiz page, which starts a fresh attempt.
func withFlow(d *Deps, fn func(w http.ResponseWriter, r *http.Request, sid string, f *attempt.Flow)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := session.ID(r)
		quizID := idParam(r, "quizID")
		f, ok := d.Registry.Flow(sid, quizID)
		if !ok {
			http.Redirect(w, r, quizURL(quizID), http.StatusSeeOther)
			return
		}
		fn(w, r, sid, f)
	}
}

// POST /quiz/{quizID}/select
func SelectHandler(d *Deps) http.HandlerFunc {
	return withFlow(d, func(w http.ResponseWriter, r *http.Request, sid string, f *attempt.Flow) {
		if err := f.Select(quiz.ID(r.PostFormValue("option"))); err != nil {
			d.Registry.SetFlash(sid, attempt.UserMessage(err))
		}
		http.Redirect(w, r, quizURL(f.QuizID()), http.StatusSeeOther)
	})
}

// keepSelection applies the "option" field that the answer form posts with
// every button, so navigating away does not lose an unsubmitted choice.
// It reports false, with a flash set, when the option was refused.
func keepSelection(d *Deps, r *http.Request, sid string, f *attempt.Flow) bool {
	opt := r.PostFormValue("option")
	if opt == "" {
		return true
	}
	if err := f.Select(quiz.ID(opt)); err != nil {
		d.Registry.SetFlash(sid, attempt.UserMessage(err))
		return false
	}
	return true
}

// POST /quiz/{quizID}/submit
func SubmitHandler(d *Deps) http.HandlerFunc {
	return withFlow(d, func(w http.ResponseWriter, r *http.Request, sid string, f *attempt.Flow) {
		back := quizURL(f.QuizID())
		if !keepSelection(d, r, sid, f) {
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		out, err := f.Submit(r.Context())
		switch {
		case err != nil:
			d.Registry.SetFlash(sid, attempt.UserMessage(err))
		case out.Finished:
			d.Registry.Drop(sid, f)
			http.Redirect(w, r, resultURL(out.AttemptID), http.StatusSeeOther)
			return
		default:
			d.Registry.SetFlash(sid, attempt.MsgRecorded)
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
	})
}

// POST /quiz/{quizID}/previous
func PreviousHandler(d *Deps) http.HandlerFunc {
	return withFlow(d, func(w http.ResponseWriter, r *http.Request, sid string, f *attempt.Flow) {
		if !keepSelection(d, r, sid, f) {
			http.Redirect(w, r, quizURL(f.QuizID()), http.StatusSeeOther)
			return
		}
		if err := f.Previous(); err != nil {
			d.Registry.SetFlash(sid, attempt.UserMessage(err))
		}
		http.Redirect(w, r, quizURL(f.QuizID()), http.StatusSeeOther)
	})
}

// POST /quiz/{quizID}/goto
func GoToHandler(d *Deps) http.HandlerFunc {
	return withFlow(d, func(w http.ResponseWriter, r *http.Request, sid string, f *attempt.Flow) {
		if !keepSelection(d, r, sid, f) {
			http.Redirect(w, r, quizURL(f.QuizID()), http.StatusSeeOther)
			return
		}
		i, err := strconv.Atoi(r.PostFormValue("index"))
		if err != nil {
			err = attempt.ErrIndexOutOfRange
		} else {
			err = f.GoTo(i)
		}
		if err != nil {
			d.Registry.SetFlash(sid, attempt.UserMessage(err))
		}
		http.Redirect(w, r, quizURL(f.QuizID()), http.StatusSeeOther)
	})
}

// GET /result/{attemptID}
func ResultHandler(api result.Fetcher, v *views, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := idParam(r, "attemptID")
		rep, err := result.Load(r.Context(), api, attemptID)
		if err != nil {
			log.Warn("result load failed", "attempt_id", attemptID, "error", err)
			status := http.StatusBadGateway
			if quizapi.IsNotFound(err) {
				status = http.StatusNotFound
			}
			renderOrFail(w, v, log, status, "error", page{Heading: "Error", Message: result.MsgLoadFailed})
			return
		}
		renderOrFail(w, v, log, http.StatusOK, "result", page{Report: rep})
	}
}
