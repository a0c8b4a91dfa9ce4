package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/result"
)

//go:embed templates/*.html
var templateFS embed.FS

// page is the data handed to every template; each view reads its own part.
type page struct {
	Flash string

	Listing catalog.Listing
	View    attempt.View
	QuizURL string // escaped; form actions hang off it
	Report  result.Report

	Heading  string
	Message  string
	RetryURL string
}

type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"quizURL": func(id quiz.ID) string { return quizURL(id) },
}

func loadViews() (*views, error) {
	v := &views{pages: map[string]*template.Template{}}
	for _, name := range []string{"catalog", "quiz", "result", "error"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (v *views) render(w http.ResponseWriter, status int, name string, data page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
