package attempt

import (
	"errors"
	"math"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type Phase int

const (
	Initializing Phase = iota
	Failed
	Ready
	Submitting
	Finished
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Failed:
		return "error"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Finished:
		return "finished"
	}
	return "unknown"
}

var (
	ErrNoSelection     = errors.New("attempt: no option selected for the current question")
	ErrSubmitInFlight  = errors.New("attempt: a submission is already in flight")
	ErrNotReady        = errors.New("attempt: not accepting input in the current phase")
	ErrIndexOutOfRange = errors.New("attempt: question index out of range")
	ErrEmptyQuiz       = errors.New("attempt: quiz has no questions")
)

// State is the client-side view of one attempt. Transitions return a new
// State and leave the receiver untouched; the selection map and answered set
// are copied on write.
//
// The selection map and answered set are caches for display only. Whether an
// answer was recorded or correct is decided by the quiz API.
type State struct {
	phase     Phase
	index     int
	questions []quiz.ID
	selected  map[quiz.ID]quiz.ID
	answered  map[quiz.ID]struct{}
	message   string
}

func NewState() State { return State{phase: Initializing} }

// Loaded moves an initializing attempt to Ready(0). A quiz without questions
// fails with ErrEmptyQuiz and a terminal error state.
func (s State) Loaded(questions []quiz.ID, emptyMessage string) (State, error) {
	if s.phase != Initializing {
		return s, ErrNotReady
	}
	if len(questions) == 0 {
		return s.Fail(emptyMessage), ErrEmptyQuiz
	}
	next := s
	next.phase = Ready
	next.index = 0
	next.questions = append([]quiz.ID(nil), questions...)
	next.selected = map[quiz.ID]quiz.ID{}
	next.answered = map[quiz.ID]struct{}{}
	return next, nil
}

func (s State) Fail(message string) State {
	next := s
	next.phase = Failed
	next.message = message
	return next
}

// Select records optionID as the choice for the displayed question.
func (s State) Select(optionID quiz.ID) (State, error) {
	if err := s.acceptsInput(); err != nil {
		return s, err
	}
	next := s
	next.selected = make(map[quiz.ID]quiz.ID, len(s.selected)+1)
	for k, v := range s.selected {
		next.selected[k] = v
	}
	next.selected[s.Current()] = optionID
	return next, nil
}

// BeginSubmit is a no-op returning ErrNoSelection when the displayed
// question has no selection.
func (s State) BeginSubmit() (State, error) {
	if err := s.acceptsInput(); err != nil {
		return s, err
	}
	if _, ok := s.selected[s.Current()]; !ok {
		return s, ErrNoSelection
	}
	next := s
	next.phase = Submitting
	return next, nil
}

// Recorded marks the displayed question as acknowledged by the API. The
// phase stays Submitting until Advance or finalization.
func (s State) Recorded() (State, error) {
	if s.phase != Submitting {
		return s, ErrNotReady
	}
	next := s
	next.answered = make(map[quiz.ID]struct{}, len(s.answered)+1)
	for k := range s.answered {
		next.answered[k] = struct{}{}
	}
	next.answered[s.Current()] = struct{}{}
	return next, nil
}

// Advance moves Submitting(i) to Ready(i+1). The last question is left for
// Finalized / FinalizeRejected.
func (s State) Advance() (State, error) {
	if s.phase != Submitting || s.IsLast() {
		return s, ErrNotReady
	}
	next := s
	next.phase = Ready
	next.index = s.index + 1
	return next, nil
}

// Rejected rolls Submitting(i) back to Ready(i), keeping the selection.
func (s State) Rejected() (State, error) {
	if s.phase != Submitting {
		return s, ErrNotReady
	}
	next := s
	next.phase = Ready
	return next, nil
}

func (s State) Finalized() (State, error) {
	if s.phase != Submitting || !s.IsLast() {
		return s, ErrNotReady
	}
	next := s
	next.phase = Finished
	return next, nil
}

// FinalizeRejected returns to Ready(last) so the user can retry.
func (s State) FinalizeRejected() (State, error) {
	if s.phase != Submitting || !s.IsLast() {
		return s, ErrNotReady
	}
	next := s
	next.phase = Ready
	return next, nil
}

// GoTo displays question i. Any in-range index is reachable; submission is
// still gated on a selection for whatever question is displayed.
func (s State) GoTo(i int) (State, error) {
	if err := s.acceptsInput(); err != nil {
		return s, err
	}
	if i < 0 || i >= len(s.questions) {
		return s, ErrIndexOutOfRange
	}
	next := s
	next.index = i
	return next, nil
}

func (s State) Previous() (State, error) {
	if s.index == 0 {
		return s.GoTo(0)
	}
	return s.GoTo(s.index - 1)
}

func (s State) acceptsInput() error {
	switch s.phase {
	case Ready:
		return nil
	case Submitting:
		return ErrSubmitInFlight
	default:
		return ErrNotReady
	}
}

func (s State) Phase() Phase { return s.phase }
func (s State) Index() int { return s.index }
func (s State) Total() int { return len(s.questions) }
func (s State) Message() string { return s.message }
func (s State) IsLast() bool { return len(s.questions) > 0 && s.index == len(s.questions)-1 }
func (s State) AnsweredCount() int { return len(s.answered) }

// Current is the id of the displayed question, or "" before loading.
func (s State) Current() quiz.ID {
	if s.index < 0 || s.index >= len(s.questions) {
		return ""
	}
	return s.questions[s.index]
}

func (s State) Selection(questionID quiz.ID) (quiz.ID, bool) {
	v, ok := s.selected[questionID]
	return v, ok
}

func (s State) IsAnswered(questionID quiz.ID) bool {
	_, ok := s.answered[questionID]
	return ok
}

// Answered lists acknowledged question ids in quiz order.
func (s State) Answered() []quiz.ID {
	out := make([]quiz.ID, 0, len(s.answered))
	for _, id := range s.questions {
		if _, ok := s.answered[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s State) CanSubmit() bool {
	if s.phase != Ready {
		return false
	}
	_, ok := s.selected[s.Current()]
	return ok
}

// Progress is round((index+1)/total*100).
func (s State) Progress() int {
	return Progress(s.index, len(s.questions))
}

func Progress(index, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(index+1) / float64(total) * 100))
}
