// Package result turns a server-scored attempt into the report shown after
// finishing. Nothing here decides correctness; scores and per-question
// verdicts come from the quiz API as-is.
package result

import (
	"context"
	"fmt"
	"math"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

const MsgLoadFailed = "Failed to load results. Please try again."

// Fetcher is satisfied by *quizapi.Client.
type Fetcher interface {
	GetResult(ctx context.Context, attemptID quiz.ID) (quiz.Result, error)
}

type Grade struct {
	Letter string
	Tone   string // excellent|great|good|okay|poor
	Badge  string
}

var grades = []struct {
	min   int
	grade Grade
}{
	{90, Grade{Letter: "A+", Tone: "excellent", Badge: "🌟"}},
	{80, Grade{Letter: "A", Tone: "great", Badge: "⭐"}},
	{70, Grade{Letter: "B", Tone: "good", Badge: "👏"}},
	{60, Grade{Letter: "C", Tone: "okay", Badge: "✓"}},
}

var lowest = Grade{Letter: "D", Tone: "poor", Badge: "💪"}

// GradeFor bands a 0..100 score; each threshold belongs to the higher band.
func GradeFor(score int) Grade {
	for _, g := range grades {
		if score >= g.min {
			return g.grade
		}
	}
	return lowest
}

func MessageFor(score int) string {
	switch {
	case score >= 90:
		return "Outstanding! You've mastered this quiz!"
	case score >= 80:
		return "Excellent work! You're doing great!"
	case score >= 70:
		return "Good job! Keep practicing to improve."
	default:
		return "Keep learning! Every attempt helps you grow."
	}
}

// Accuracy is round(correct/total*100), or 0 for an empty attempt.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

type Report struct {
	AttemptID quiz.ID
	quiz.Result
	Grade     Grade
	Message   string
	Accuracy  int
	Celebrate bool
}

func Build(attemptID quiz.ID, r quiz.Result) Report {
	return Report{
		AttemptID: attemptID,
		Result:    r,
		Grade:     GradeFor(r.Score),
		Message:   MessageFor(r.Score),
		Accuracy:  Accuracy(r.CorrectAnswers, r.TotalQuestions),
		Celebrate: r.Score >= 80,
	}
}

type FetchError struct {
	AttemptID quiz.ID
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("result: fetch attempt %s: %v", e.AttemptID, e.Err)
}
func (e *FetchError) Unwrap() error   { return e.Err }
func (e *FetchError) Message() string { return MsgLoadFailed }

// Load fetches the result for attemptID once.
func Load(ctx context.Context, api Fetcher, attemptID quiz.ID) (Report, error) {
	r, err := api.GetResult(ctx, attemptID)
	if err != nil {
		return Report{}, &FetchError{AttemptID: attemptID, Err: err}
	}
	return Build(attemptID, r), nil
}
