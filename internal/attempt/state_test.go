package attempt

import (
	"errors"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

func loaded(t *testing.T, ids ...quiz.ID) State {
	t.Helper()
	s, err := NewState().Loaded(ids, MsgEmptyQuiz)
	if err != nil {
		t.Fatalf("Loaded: %v", err)
	}
	return s
}

func TestLoadedStartsAtFirstQuestion(t *testing.T) {
	s := loaded(t, "q1", "q2")
	if s.Phase() != Ready || s.Index() != 0 || s.Total() != 2 {
		t.Fatalf("want Ready(0) of 2, got %s(%d) of %d", s.Phase(), s.Index(), s.Total())
	}
}

func TestLoadedEmptyQuizFails(t *testing.T) {
	s, err := NewState().Loaded(nil, MsgEmptyQuiz)
	if !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("want ErrEmptyQuiz, got=%v", err)
	}
	if s.Phase() != Failed || s.Message() != MsgEmptyQuiz {
		t.Fatalf("want Failed(%q), got %s(%q)", MsgEmptyQuiz, s.Phase(), s.Message())
	}
}

func TestSubmitWithoutSelectionIsNoop(t *testing.T) {
	s := loaded(t, "q1", "q2")
	next, err := s.BeginSubmit()
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("want ErrNoSelection, got=%v", err)
	}
	if next.Phase() != Ready || next.Index() != 0 {
		t.Fatalf("state changed: %s(%d)", next.Phase(), next.Index())
	}
	if _, ok := next.Selection("q1"); ok {
		t.Fatalf("selection map changed")
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := loaded(t, "q1", "q2")
	selected, err := s.Select("o1")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, ok := s.Selection("q1"); ok {
		t.Fatalf("original state gained a selection")
	}
	submitting, _ := selected.BeginSubmit()
	recorded, _ := submitting.Recorded()
	if submitting.IsAnswered("q1") {
		t.Fatalf("original state gained an answered id")
	}
	if !recorded.IsAnswered("q1") {
		t.Fatalf("recorded state lacks q1")
	}
}

func TestSuccessfulSubmitAdvances(t *testing.T) {
	s := loaded(t, "q1", "q2", "q3")
	s, _ = s.Select("o1")
	s, _ = s.BeginSubmit()
	if s.Phase() != Submitting {
		t.Fatalf("want Submitting, got %s", s.Phase())
	}
	s, _ = s.Recorded()
	s, err := s.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Phase() != Ready || s.Index() != 1 {
		t.Fatalf("want Ready(1), got %s(%d)", s.Phase(), s.Index())
	}
	if !s.IsAnswered("q1") {
		t.Fatalf("answered set lacks q1")
	}
	if sel, ok := s.Selection("q1"); !ok || sel != "o1" {
		t.Fatalf("selection for q1 lost: %q %v", sel, ok)
	}
}

func TestRejectedSubmitRollsBack(t *testing.T) {
	s := loaded(t, "q1", "q2")
	s, _ = s.Select("o1")
	s, _ = s.BeginSubmit()
	s, err := s.Rejected()
	if err != nil {
		t.Fatalf("Rejected: %v", err)
	}
	if s.Phase() != Ready || s.Index() != 0 {
		t.Fatalf("want Ready(0), got %s(%d)", s.Phase(), s.Index())
	}
	if s.AnsweredCount() != 0 {
		t.Fatalf("answered set changed: %v", s.Answered())
	}
	if sel, _ := s.Selection("q1"); sel != "o1" {
		t.Fatalf("selection not kept for retry: %q", sel)
	}
	if !s.CanSubmit() {
		t.Fatalf("expected retry to be possible")
	}
}

func TestSubmittingBlocksInput(t *testing.T) {
	s := loaded(t, "q1", "q2")
	s, _ = s.Select("o1")
	s, _ = s.BeginSubmit()

	if _, err := s.BeginSubmit(); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("BeginSubmit: want ErrSubmitInFlight, got=%v", err)
	}
	if _, err := s.Select("o2"); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("Select: want ErrSubmitInFlight, got=%v", err)
	}
	if _, err := s.GoTo(1); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("GoTo: want ErrSubmitInFlight, got=%v", err)
	}
	if s.CanSubmit() {
		t.Fatalf("CanSubmit must be false while submitting")
	}
}

func TestLastQuestionFinalizes(t *testing.T) {
	s := loaded(t, "q1")
	s, _ = s.Select("o1")
	s, _ = s.BeginSubmit()
	s, _ = s.Recorded()
	if _, err := s.Advance(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Advance past last: want ErrNotReady, got=%v", err)
	}

	failed, err := s.FinalizeRejected()
	if err != nil {
		t.Fatalf("FinalizeRejected: %v", err)
	}
	if failed.Phase() != Ready || failed.Index() != 0 {
		t.Fatalf("want Ready(last), got %s(%d)", failed.Phase(), failed.Index())
	}

	done, err := s.Finalized()
	if err != nil {
		t.Fatalf("Finalized: %v", err)
	}
	if done.Phase() != Finished {
		t.Fatalf("want Finished, got %s", done.Phase())
	}
	if _, err := done.Select("o1"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("input after Finished: want ErrNotReady, got=%v", err)
	}
}

func TestNavigation(t *testing.T) {
	s := loaded(t, "q1", "q2", "q3")

	s, err := s.Previous()
	if err != nil || s.Index() != 0 {
		t.Fatalf("Previous at 0: index=%d err=%v", s.Index(), err)
	}
	s, err = s.GoTo(2)
	if err != nil || s.Index() != 2 {
		t.Fatalf("GoTo(2): index=%d err=%v", s.Index(), err)
	}
	if !s.IsLast() {
		t.Fatalf("index 2 of 3 should be last")
	}
	s, _ = s.Previous()
	if s.Index() != 1 {
		t.Fatalf("Previous from 2: want 1, got %d", s.Index())
	}
	if _, err := s.GoTo(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("GoTo(3): want ErrIndexOutOfRange, got=%v", err)
	}
	if _, err := s.GoTo(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("GoTo(-1): want ErrIndexOutOfRange, got=%v", err)
	}
}

func TestSelectionFollowsDisplayedQuestion(t *testing.T) {
	s := loaded(t, "q1", "q2")
	s, _ = s.GoTo(1)
	s, _ = s.Select("o9")
	if _, ok := s.Selection("q1"); ok {
		t.Fatalf("selection leaked to q1")
	}
	s, _ = s.Previous()
	if s.CanSubmit() {
		t.Fatalf("q1 has no selection; submit must be gated")
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		index, total, want int
	}{
		{1, 4, 50},
		{0, 4, 25},
		{0, 3, 33},
		{1, 3, 67},
		{2, 3, 100},
		{0, 8, 13},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := Progress(c.index, c.total); got != c.want {
			t.Fatalf("Progress(%d,%d): want=%d got=%d", c.index, c.total, c.want, got)
		}
	}
}
