package attempt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/identity"
	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
)

var (
	ErrUnknownOption  = errors.New("attempt: option does not belong to the current question")
	ErrAlreadyStarted = errors.New("attempt: flow already initialized")
)

// API is the part of the quiz API an attempt needs.
type API interface {
	GetQuiz(ctx context.Context, quizID quiz.ID) (quiz.Quiz, error)
	StartAttempt(ctx context.Context, quizID quiz.ID, userID string) (quiz.ID, error)
	SubmitAnswer(ctx context.Context, attemptID quiz.ID, ans quiz.Answer) error
	FinalizeAttempt(ctx context.Context, attemptID quiz.ID) error
}

// Outcome reports where a successful Submit left the attempt.
type Outcome struct {
	Index     int // displayed question after the submit
	Finished  bool
	AttemptID quiz.ID // set when Finished; hand it to the result view
}

type Option func(*Flow)

func WithIdentity(p identity.Provider) Option { return func(f *Flow) { f.ids = p } }
func WithLogger(l *logger.Logger) Option { return func(f *Flow) { f.log = l } }

// WithFeedbackDelay sets the pause between an acknowledged answer and the
// next question, while "answer recorded" is shown.
func WithFeedbackDelay(d time.Duration) Option { return func(f *Flow) { f.delay = d } }

func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Flow) { f.sleep = fn }
}

// Flow drives one attempt at one quiz: start-up, one answer per question,
// then finalization. The mutex is never held across an API call, so a second
// Submit while one is in flight sees Submitting and is refused.
type Flow struct {
	api    API
	ids    identity.Provider
	log    *logger.Logger
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	quizID quiz.ID

	mu        sync.Mutex
	started   bool
	quiz      quiz.Quiz
	attemptID quiz.ID
	userID    string
	state     State

	// acked is the last question's option the API has already recorded
	// while finalization is still outstanding.
	acked quiz.ID
}

func NewFlow(api API, quizID quiz.ID, opts ...Option) *Flow {
	f := &Flow{
		api:    api,
		quizID: quizID,
		state:  NewState(),
		sleep:  sleepCtx,
	}
	for _, o := range opts {
		o(f)
	}
	if f.ids == nil {
		f.ids = identity.NewClock(nil)
	}
	if f.log == nil {
		f.log = logger.Nop()
	}
	return f
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Init runs the start-up pipeline: fetch the quiz, then start an attempt for
// it. The steps are sequential; a failure names the step that failed.
func (f *Flow) Init(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	f.started = true
	f.mu.Unlock()

	log := f.log.With("quiz_id", f.quizID)

	qz, err := f.api.GetQuiz(ctx, f.quizID)
	if err != nil {
		log.Warn("attempt start-up failed", "step", StepFetchQuiz, "error", err)
		return f.failInit(&Error{Kind: InitializationFailure, Step: StepFetchQuiz, Err: err})
	}
	if len(qz.Questions) == 0 {
		f.mu.Lock()
		f.quiz = qz
		f.state, _ = f.state.Loaded(nil, MsgEmptyQuiz)
		f.mu.Unlock()
		log.Warn("quiz has no questions")
		return &Error{Kind: EmptyQuizFailure, Step: StepFetchQuiz, Err: ErrEmptyQuiz}
	}

	userID := f.ids.NewUserID()
	attemptID, err := f.api.StartAttempt(ctx, f.quizID, userID)
	if err != nil {
		log.Warn("attempt start-up failed", "step", StepStartAttempt, "error", err)
		return f.failInit(&Error{Kind: InitializationFailure, Step: StepStartAttempt, Err: err})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.quiz = qz
	f.attemptID = attemptID
	f.userID = userID
	next, err := f.state.Loaded(qz.QuestionIDs(), MsgEmptyQuiz)
	if err != nil {
		return &Error{Kind: InitializationFailure, Step: StepFetchQuiz, Err: err}
	}
	f.state = next
	log.Info("attempt started", "attempt_id", attemptID, "questions", len(qz.Questions))
	return nil
}

func (f *Flow) failInit(e *Error) error {
	f.mu.Lock()
	f.state = f.state.Fail(e.Message())
	f.mu.Unlock()
	return e
}

// Select chooses optionID for the displayed question.
func (f *Flow) Select(optionID quiz.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Phase() == Ready {
		q, _ := f.quiz.Question(f.state.Index())
		if _, ok := q.Option(optionID); !ok {
			return ErrUnknownOption
		}
	}
	next, err := f.state.Select(optionID)
	if err != nil {
		return err
	}
	f.state = next
	return nil
}

// Submit sends the selected answer for the displayed question and advances.
// After the last question it finalizes the attempt. Failures leave the
// selection in place and the same question displayed.
func (f *Flow) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	next, err := f.state.BeginSubmit()
	if err != nil {
		f.mu.Unlock()
		return Outcome{Index: f.state.Index()}, err
	}
	f.state = next
	index := next.Index()
	questionID := next.Current()
	optionID, _ := next.Selection(questionID)
	attemptID := f.attemptID
	last := next.IsLast()
	retry := last && f.acked != "" && f.acked == optionID
	f.mu.Unlock()

	log := f.log.With("attempt_id", attemptID, "question_id", questionID)

	if retry {
		log.Debug("answer already recorded, retrying finalization")
	} else {
		if err := f.api.SubmitAnswer(ctx, attemptID, quiz.Answer{QuestionID: questionID, SelectedOptionID: optionID}); err != nil {
			f.transition(State.Rejected)
			log.Warn("answer submission failed", "error", err)
			return Outcome{Index: index}, &Error{Kind: SubmissionFailure, Err: err}
		}
		f.transition(State.Recorded)
		log.Debug("answer recorded", "index", index)

		// Cosmetic; an interrupted pause still advances.
		_ = f.sleep(ctx, f.delay)
	}

	if !last {
		f.transition(State.Advance)
		return Outcome{Index: index + 1}, nil
	}

	if err := f.api.FinalizeAttempt(ctx, attemptID); err != nil {
		// A lost ack on the first finalize shows up as 409 on the retry.
		if !retry || !quizapi.IsConflict(err) {
			f.mu.Lock()
			f.acked = optionID
			f.mu.Unlock()
			f.transition(State.FinalizeRejected)
			log.Warn("attempt finalization failed", "error", err)
			return Outcome{Index: index}, &Error{Kind: FinalizationFailure, Err: err}
		}
		log.Info("attempt was already finalized")
	}
	f.transition(State.Finalized)
	log.Info("attempt finished")
	return Outcome{Index: index, Finished: true, AttemptID: attemptID}, nil
}

func (f *Flow) transition(fn func(State) (State, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if next, err := fn(f.state); err == nil {
		f.state = next
	}
}

// GoTo displays question i without resubmitting anything.
func (f *Flow) GoTo(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := f.state.GoTo(i)
	if err != nil {
		return err
	}
	f.state = next
	return nil
}

func (f *Flow) Previous() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := f.state.Previous()
	if err != nil {
		return err
	}
	f.state = next
	return nil
}

func (f *Flow) QuizID() quiz.ID { return f.quizID }

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) AttemptID() quiz.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attemptID
}
