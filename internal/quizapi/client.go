package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Operation names, used in errors, logs and metrics.
const (
	OpListQuizzes     = "list_quizzes"
	OpGetQuiz         = "get_quiz"
	OpStartAttempt    = "start_attempt"
	OpSubmitAnswer    = "submit_answer"
	OpFinalizeAttempt = "finalize_attempt"
	OpGetResult       = "get_result"
)

// Observer receives one observation per completed call.
type Observer interface {
	ObserveCall(op, outcome string, d time.Duration)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; Timeout is applied to a copy
	Observer   Observer
	Logger     *logger.Logger
}

// Client talks to the quiz API. Calls are never retried.
type Client struct {
	base *url.URL
	http *http.Client
	obs  Observer
	log  *logger.Logger
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("quizapi: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("quizapi: base url %q is not absolute", cfg.BaseURL)
	}
	h := &http.Client{}
	if cfg.HTTPClient != nil {
		cp := *cfg.HTTPClient
		h = &cp
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{base: u, http: h, obs: cfg.Observer, log: log}, nil
}

func (c *Client) ListQuizzes(ctx context.Context) ([]quiz.Summary, error) {
	var out []quiz.Summary
	if err := c.do(ctx, OpListQuizzes, http.MethodGet, c.endpoint(nil, "api", "quizzes"), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []quiz.Summary{}
	}
	return out, nil
}

func (c *Client) GetQuiz(ctx context.Context, quizID quiz.ID) (quiz.Quiz, error) {
	var out quiz.Quiz
	err := c.do(ctx, OpGetQuiz, http.MethodGet, c.endpoint(nil, "api", "quizzes", quizID.String()), nil, &out)
	return out, err
}

// StartAttempt creates an attempt for quizID on behalf of userID and returns its id.
func (c *Client) StartAttempt(ctx context.Context, quizID quiz.ID, userID string) (quiz.ID, error) {
	q := url.Values{"userId": []string{userID}}
	var out struct {
		AttemptID quiz.ID `json:"attemptId"`
	}
	if err := c.do(ctx, OpStartAttempt, http.MethodPost, c.endpoint(q, "api", "quizzes", quizID.String(), "attempt", "start"), nil, &out); err != nil {
		return "", err
	}
	if out.AttemptID == "" {
		return "", &Error{Op: OpStartAttempt, Err: fmt.Errorf("response carried no attemptId")}
	}
	return out.AttemptID, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, attemptID quiz.ID, ans quiz.Answer) error {
	body, err := json.Marshal(ans)
	if err != nil {
		return &Error{Op: OpSubmitAnswer, Err: err}
	}
	return c.do(ctx, OpSubmitAnswer, http.MethodPost, c.endpoint(nil, "api", "quizzes", "attempt", attemptID.String(), "response"), body, nil)
}

func (c *Client) FinalizeAttempt(ctx context.Context, attemptID quiz.ID) error {
	return c.do(ctx, OpFinalizeAttempt, http.MethodPost, c.endpoint(nil, "api", "quizzes", "attempt", attemptID.String(), "submit"), nil, nil)
}

func (c *Client) GetResult(ctx context.Context, attemptID quiz.ID) (quiz.Result, error) {
	var out quiz.Result
	err := c.do(ctx, OpGetResult, http.MethodGet, c.endpoint(nil, "api", "quizzes", "attempt", attemptID.String(), "result"), nil, &out)
	return out, err
}

func (c *Client) endpoint(q url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimSuffix(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		if c.obs != nil {
			c.obs.ObserveCall(op, outcome, time.Since(start))
		}
		c.log.Debug("quiz api call", "op", op, "method", method, "url", target, "outcome", outcome, "elapsed", time.Since(start))
	}()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &Error{Op: op, Status: res.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
