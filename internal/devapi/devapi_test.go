package devapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/result"
)

const twoQuestions = `
quizzes:
  - id: "7"
    title: Pair
    duration: 3
    questions:
      - id: "71"
        text: One?
        answer: "a"
        options: [{id: "a", text: right}, {id: "b", text: wrong}]
      - id: "72"
        text: Two?
        answer: "c"
        options: [{id: "c", text: right}, {id: "d", text: wrong}]
`

func mustSeed(t *testing.T, raw string) []SeedQuiz {
	t.Helper()
	seed, err := ParseSeed([]byte(raw))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	return seed
}

func TestDefaultSeedLoads(t *testing.T) {
	seed, err := LoadSeed("")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed) == 0 {
		t.Fatalf("built-in seed is empty")
	}
}

func TestLoadSeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(twoQuestions), 0o600); err != nil {
		t.Fatal(err)
	}
	seed, err := LoadSeed(path)
	if err != nil || len(seed) != 1 || seed[0].Title != "Pair" {
		t.Fatalf("LoadSeed: seed=%+v err=%v", seed, err)
	}
}

func TestParseSeedRejectsBadAnswerKey(t *testing.T) {
	bad := `
quizzes:
  - id: "1"
    questions:
      - id: "q"
        answer: "zz"
        options: [{id: "a", text: x}]
`
	if _, err := ParseSeed([]byte(bad)); err == nil {
		t.Fatalf("want error for answer outside options")
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(mustSeed(t, twoQuestions))
	s.newID = func() string { return "att-1" }

	pub, err := s.Quiz("7")
	if err != nil || len(pub.Questions) != 2 {
		t.Fatalf("Quiz: %+v err=%v", pub, err)
	}
	id, err := s.StartAttempt("7", "user_1")
	if err != nil || id != "att-1" {
		t.Fatalf("StartAttempt: id=%q err=%v", id, err)
	}
	if _, err := s.Result(id); !errors.Is(err, ErrAttemptOpen) {
		t.Fatalf("result before submit: want ErrAttemptOpen, got=%v", err)
	}
	if err := s.SaveResponse(id, quiz.Answer{QuestionID: "71", SelectedOptionID: "b"}); err != nil {
		t.Fatal(err)
	}
	// later answer to the same question wins
	if err := s.SaveResponse(id, quiz.Answer{QuestionID: "71", SelectedOptionID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResponse(id, quiz.Answer{QuestionID: "71", SelectedOptionID: "c"}); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("foreign option: got=%v", err)
	}
	if err := s.SaveResponse(id, quiz.Answer{QuestionID: "99", SelectedOptionID: "a"}); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("foreign question: got=%v", err)
	}

	res, err := s.Submit(id)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 50 || res.CorrectAnswers != 1 || res.IncorrectAnswers != 1 || res.TotalQuestions != 2 {
		t.Fatalf("score: %+v", res)
	}
	if res.Details[1].UserAnswer != "Not answered" || res.Details[1].CorrectAnswer != "right" {
		t.Fatalf("details: %+v", res.Details)
	}
	if err := s.SaveResponse(id, quiz.Answer{QuestionID: "72", SelectedOptionID: "c"}); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("response after submit: got=%v", err)
	}
	if _, err := s.Submit(id); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("double submit: got=%v", err)
	}
}

func newClient(t *testing.T, s *Store) *quizapi.Client {
	t.Helper()
	srv := httptest.NewServer(NewRouter(s, nil, nil))
	t.Cleanup(srv.Close)
	c, err := quizapi.New(quizapi.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("quizapi.New: %v", err)
	}
	return c
}

func TestHTTPStatusMapping(t *testing.T) {
	s := NewStore(mustSeed(t, twoQuestions))
	c := newClient(t, s)
	ctx := context.Background()

	if _, err := c.GetQuiz(ctx, "nope"); !quizapi.IsNotFound(err) {
		t.Fatalf("unknown quiz: want 404, got=%v", err)
	}
	id, err := c.StartAttempt(ctx, "7", "user_1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	var apiErr *quizapi.Error
	if _, err := c.GetResult(ctx, id); !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("result before submit: want 409, got=%v", err)
	}
	if err := c.SubmitAnswer(ctx, id, quiz.Answer{QuestionID: "71", SelectedOptionID: "d"}); !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("foreign option: want 400, got=%v", err)
	}
	if err := c.FinalizeAttempt(ctx, id); err != nil {
		t.Fatalf("FinalizeAttempt: %v", err)
	}
	if err := c.SubmitAnswer(ctx, id, quiz.Answer{QuestionID: "71", SelectedOptionID: "a"}); !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("response after submit: want 409, got=%v", err)
	}
}

func TestFlowAgainstDevAPI(t *testing.T) {
	c := newClient(t, NewStore(mustSeed(t, twoQuestions)))
	ctx := context.Background()

	list, err := c.ListQuizzes(ctx)
	if err != nil || len(list) != 1 || list[0].QuestionCount != 2 {
		t.Fatalf("ListQuizzes: %+v err=%v", list, err)
	}

	f := attempt.NewFlow(c, "7", attempt.WithFeedbackDelay(0))
	if err := f.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, opt := range []quiz.ID{"a", "d"} {
		if err := f.Select(opt); err != nil {
			t.Fatalf("Select(%s): %v", opt, err)
		}
		if _, err := f.Submit(ctx); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if f.State().Phase() != attempt.Finished {
		t.Fatalf("phase: got=%v", f.State().Phase())
	}

	rep, err := result.Load(ctx, c, f.AttemptID())
	if err != nil {
		t.Fatalf("result.Load: %v", err)
	}
	if rep.Score != 50 || rep.Grade.Letter != "D" || rep.Accuracy != 50 {
		t.Fatalf("report: %+v", rep)
	}
}

func TestEscapedQuizID(t *testing.T) {
	seed := mustSeed(t, `
quizzes:
  - id: "go/101 intro"
    title: Slashed
    questions:
      - id: "1"
        text: One?
        answer: "a"
        options: [{id: "a", text: right}]
`)
	c := newClient(t, NewStore(seed))
	ctx := context.Background()

	q, err := c.GetQuiz(ctx, "go/101 intro")
	if err != nil || q.Title != "Slashed" {
		t.Fatalf("GetQuiz: %+v err=%v", q, err)
	}
	if _, err := c.StartAttempt(ctx, "go/101 intro", "user_1"); err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
}
