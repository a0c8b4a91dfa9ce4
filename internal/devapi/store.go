// Package devapi is an in-memory quiz API for local development and
// integration tests. Scoring happens here, never in the front ends.
package devapi

import (
	"errors"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrAttemptClosed   = errors.New("attempt already submitted")
	ErrAttemptOpen     = errors.New("attempt not submitted yet")
	ErrUnknownQuestion = errors.New("question is not part of this quiz")
	ErrUnknownOption   = errors.New("option is not part of this question")
)

type attemptRec struct {
	quizID    string
	userID    string
	responses map[string]string // question id -> option id
	submitted bool
	result    quiz.Result
}

type Store struct {
	mu       sync.RWMutex
	order    []string
	quizzes  map[string]SeedQuiz
	attempts map[string]*attemptRec
	newID    func() string
}

func NewStore(seed []SeedQuiz) *Store {
	s := &Store{
		quizzes:  map[string]SeedQuiz{},
		attempts: map[string]*attemptRec{},
		newID:    uuid.NewString,
	}
	for _, q := range seed {
		s.order = append(s.order, q.ID)
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *Store) List() []quiz.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]quiz.Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.quizzes[id].summary())
	}
	return out
}

// Quiz returns the quiz without its answer key.
func (s *Store) Quiz(id string) (quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, ErrQuizNotFound
	}
	return q.public(), nil
}

func (s *Store) StartAttempt(quizID, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return "", ErrQuizNotFound
	}
	id := s.newID()
	s.attempts[id] = &attemptRec{quizID: quizID, userID: userID, responses: map[string]string{}}
	return id, nil
}

// SaveResponse records ans, replacing any earlier answer to the same question.
func (s *Store) SaveResponse(attemptID string, ans quiz.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptID]
	if !ok {
		return ErrAttemptNotFound
	}
	if a.submitted {
		return ErrAttemptClosed
	}
	q, ok := findQuestion(s.quizzes[a.quizID], string(ans.QuestionID))
	if !ok {
		return ErrUnknownQuestion
	}
	if _, ok := findOption(q, string(ans.SelectedOptionID)); !ok {
		return ErrUnknownOption
	}
	a.responses[q.ID] = string(ans.SelectedOptionID)
	return nil
}

// Submit closes the attempt and scores it.
func (s *Store) Submit(attemptID string) (quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptID]
	if !ok {
		return quiz.Result{}, ErrAttemptNotFound
	}
	if a.submitted {
		return quiz.Result{}, ErrAttemptClosed
	}
	a.result = score(s.quizzes[a.quizID], a.responses)
	a.submitted = true
	return a.result, nil
}

func (s *Store) Result(attemptID string) (quiz.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[attemptID]
	if !ok {
		return quiz.Result{}, ErrAttemptNotFound
	}
	if !a.submitted {
		return quiz.Result{}, ErrAttemptOpen
	}
	return a.result, nil
}

// score grades every question of q; unanswered questions count as incorrect.
func score(q SeedQuiz, responses map[string]string) quiz.Result {
	r := quiz.Result{TotalQuestions: len(q.Questions), Details: make([]quiz.Detail, 0, len(q.Questions))}
	for _, qq := range q.Questions {
		d := quiz.Detail{QuestionText: qq.Text}
		if o, ok := findOption(qq, qq.Answer); ok {
			d.CorrectAnswer = o.Text
		}
		chosen, answered := responses[qq.ID]
		if answered {
			if o, ok := findOption(qq, chosen); ok {
				d.UserAnswer = o.Text
			}
			d.IsCorrect = chosen == qq.Answer
		} else {
			d.UserAnswer = "Not answered"
		}
		if d.IsCorrect {
			r.CorrectAnswers++
		}
		r.Details = append(r.Details, d)
	}
	r.IncorrectAnswers = r.TotalQuestions - r.CorrectAnswers
	if r.TotalQuestions > 0 {
		r.Score = int(math.Round(float64(r.CorrectAnswers) / float64(r.TotalQuestions) * 100))
	}
	return r
}

func findQuestion(q SeedQuiz, id string) (SeedQuestion, bool) {
	for _, qq := range q.Questions {
		if qq.ID == id {
			return qq, true
		}
	}
	return SeedQuestion{}, false
}

func findOption(q SeedQuestion, id string) (SeedOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return SeedOption{}, false
}
