package attempt

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InitializationFailure Kind = iota + 1
	EmptyQuizFailure
	SubmissionFailure
	FinalizationFailure
)

func (k Kind) String() string {
	switch k {
	case InitializationFailure:
		return "initialization failure"
	case EmptyQuizFailure:
		return "empty quiz"
	case SubmissionFailure:
		return "submission failure"
	case FinalizationFailure:
		return "finalization failure"
	}
	return "unknown failure"
}

// Step names one stage of the start-up pipeline.
type Step string

const (
	StepFetchQuiz    Step = "fetch-quiz"
	StepStartAttempt Step = "start-attempt"
)

// User-facing messages.
const (
	MsgInitFailed     = "Failed to start quiz. Please try again."
	MsgEmptyQuiz      = "This quiz has no questions available."
	MsgSubmitFailed   = "Error submitting response. Please try again."
	MsgFinalizeFailed = "Error finishing quiz. Please try again."
	MsgSelectFirst    = "Please select an answer"
	MsgRecorded       = "Answer recorded!"
)

type Error struct {
	Kind Kind
	Step Step // set for start-up failures
	Err  error
}

func (e *Error) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("attempt: %s at %s: %v", e.Kind, e.Step, e.Err)
	}
	return fmt.Sprintf("attempt: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text shown to the user for this failure.
func (e *Error) Message() string {
	switch e.Kind {
	case InitializationFailure:
		return MsgInitFailed
	case EmptyQuizFailure:
		return MsgEmptyQuiz
	case SubmissionFailure:
		return MsgSubmitFailed
	case FinalizationFailure:
		return MsgFinalizeFailed
	}
	return MsgInitFailed
}

// Recoverable reports whether the user can retry from the same question.
func Recoverable(err error) bool {
	var ae *Error
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == SubmissionFailure || ae.Kind == FinalizationFailure
}

// UserMessage maps any Flow error to the notification shown to the user.
func UserMessage(err error) string {
	var ae *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ae):
		return ae.Message()
	case errors.Is(err, ErrNoSelection):
		return MsgSelectFirst
	case errors.Is(err, ErrSubmitInFlight):
		return "Your answer is still being submitted."
	case errors.Is(err, ErrIndexOutOfRange):
		return "That question does not exist."
	case errors.Is(err, ErrUnknownOption):
		return "That option does not belong to this question."
	}
	return "Something went wrong. Please try again."
}
