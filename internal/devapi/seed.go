package devapi

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

//go:embed seed/default.yaml
var defaultSeed []byte

// SeedQuestion is a question together with its answer key.
type SeedQuestion struct {
	ID      string       `yaml:"id"`
	Text    string       `yaml:"text"`
	Answer  string       `yaml:"answer"` // id of the correct option
	Options []SeedOption `yaml:"options"`
}

type SeedOption struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

type SeedQuiz struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Duration    int            `yaml:"duration"`
	Questions   []SeedQuestion `yaml:"questions"`
}

type seedFile struct {
	Quizzes []SeedQuiz `yaml:"quizzes"`
}

// LoadSeed reads quizzes from the YAML file at path, or the built-in set
// when path is empty.
func LoadSeed(path string) ([]SeedQuiz, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		raw = b
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]SeedQuiz, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	seen := map[string]bool{}
	for _, q := range f.Quizzes {
		if err := q.validate(); err != nil {
			return nil, err
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("seed: duplicate quiz id %q", q.ID)
		}
		seen[q.ID] = true
	}
	return f.Quizzes, nil
}

func (s SeedQuiz) validate() error {
	if s.ID == "" {
		return errors.New("seed: quiz without id")
	}
	qids := map[string]bool{}
	for _, q := range s.Questions {
		if q.ID == "" || qids[q.ID] {
			return fmt.Errorf("seed: quiz %q: missing or duplicate question id %q", s.ID, q.ID)
		}
		qids[q.ID] = true
		found := false
		for _, o := range q.Options {
			if o.ID == q.Answer {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("seed: quiz %q question %q: answer %q is not one of its options", s.ID, q.ID, q.Answer)
		}
	}
	return nil
}

// public strips the answer key.
func (s SeedQuiz) public() quiz.Quiz {
	out := quiz.Quiz{
		ID:          quiz.ID(s.ID),
		Title:       s.Title,
		Description: s.Description,
		Duration:    s.Duration,
		Questions:   make([]quiz.Question, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		pq := quiz.Question{ID: quiz.ID(q.ID), Text: q.Text, Options: make([]quiz.Option, 0, len(q.Options))}
		for _, o := range q.Options {
			pq.Options = append(pq.Options, quiz.Option{ID: quiz.ID(o.ID), Text: o.Text})
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}

func (s SeedQuiz) summary() quiz.Summary {
	return quiz.Summary{
		ID:            quiz.ID(s.ID),
		Title:         s.Title,
		Description:   s.Description,
		Duration:      s.Duration,
		QuestionCount: len(s.Questions),
	}
}
