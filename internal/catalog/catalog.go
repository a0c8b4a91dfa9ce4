// Package catalog builds the quiz listing shown before an attempt starts.
package catalog

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

const MsgLoadFailed = "Failed to load quizzes. Please try again."

// Lister is satisfied by *quizapi.Client.
type Lister interface {
	ListQuizzes(ctx context.Context) ([]quiz.Summary, error)
}

type Entry struct {
	quiz.Summary
	Difficulty int // percent width of the difficulty bar
}

type Listing struct {
	Quizzes        []Entry
	TotalQuizzes   int
	TotalQuestions int
}

// LoadError means the listing could not be fetched. The user retries by
// reloading.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string   { return fmt.Sprintf("catalog: load quizzes: %v", e.Err) }
func (e *LoadError) Unwrap() error   { return e.Err }
func (e *LoadError) Message() string { return MsgLoadFailed }

// Load fetches the quiz list once and derives the summary stats.
func Load(ctx context.Context, api Lister) (Listing, error) {
	list, err := api.ListQuizzes(ctx)
	if err != nil {
		return Listing{}, &LoadError{Err: err}
	}
	return Build(list), nil
}

func Build(list []quiz.Summary) Listing {
	out := Listing{Quizzes: make([]Entry, 0, len(list)), TotalQuizzes: len(list)}
	for _, s := range list {
		out.TotalQuestions += s.QuestionCount
		out.Quizzes = append(out.Quizzes, Entry{Summary: s, Difficulty: DifficultyPercent(s.QuestionCount)})
	}
	return out
}

// DifficultyPercent scales the question count against a four-question
// reference quiz, capped at a full bar.
func DifficultyPercent(questionCount int) int {
	if questionCount <= 0 {
		return 0
	}
	p := questionCount * 100 / 4
	if p > 100 {
		return 100
	}
	return p
}
