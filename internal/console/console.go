// Package console is a line-oriented terminal front end over the same
// catalog, attempt and result models the web front end uses.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/result"
)

// ErrQuit is returned by Play when the user leaves before finishing.
var ErrQuit = errors.New("console: quit")

type API interface {
	catalog.Lister
	result.Fetcher
	attempt.API
}

type Console struct {
	api  API
	in   *bufio.Scanner
	out  io.Writer
	opts []attempt.Option
}

func New(api API, in io.Reader, out io.Writer, opts ...attempt.Option) *Console {
	return &Console{api: api, in: bufio.NewScanner(in), out: out, opts: opts}
}

func (c *Console) printf(format string, a ...any) { fmt.Fprintf(c.out, format, a...) }

func (c *Console) Catalog(ctx context.Context) error {
	l, err := catalog.Load(ctx, c.api)
	if err != nil {
		c.printf("⚠️  %s\n", catalog.MsgLoadFailed)
		return err
	}
	c.printf("Quiz Platform: %d quizzes, %d questions\n\n", l.TotalQuizzes, l.TotalQuestions)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tMIN\tQUESTIONS\tDIFFICULTY")
	for _, e := range l.Quizzes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", e.ID, e.Title, e.Duration, e.QuestionCount, bar(e.Difficulty, 10))
	}
	return tw.Flush()
}

func bar(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

const help = "commands: <n> select option, s [n] submit, p previous, g <n> go to question, q quit"

// Play runs one attempt at quizID to completion and prints the result.
func (c *Console) Play(ctx context.Context, quizID quiz.ID) (quiz.ID, error) {
	f := attempt.NewFlow(c.api, quizID, c.opts...)
	if err := f.Init(ctx); err != nil {
		c.printf("⚠️  %s\n", attempt.UserMessage(err))
		return "", err
	}
	c.printf("%s\n", help)

	for {
		v := f.Snapshot()
		c.renderQuestion(v)
		c.printf("> ")
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return "", err
			}
			return "", ErrQuit
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(c.in.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch {
		case cmd == "q":
			return "", ErrQuit
		case cmd == "p":
			c.report(f.Previous())
		case cmd == "g":
			n, err := strconv.Atoi(arg)
			if err != nil {
				c.report(attempt.ErrIndexOutOfRange)
				continue
			}
			c.report(f.GoTo(n - 1))
		case cmd == "s":
			if arg != "" {
				if err := c.selectNumbered(f, v, arg); err != nil {
					c.report(err)
					continue
				}
			}
			out, err := f.Submit(ctx)
			if err != nil {
				c.report(err)
				continue
			}
			if out.Finished {
				c.printf("🎉 Quiz finished.\n\n")
				return out.AttemptID, c.Result(ctx, out.AttemptID)
			}
			c.printf("✓ %s\n", attempt.MsgRecorded)
		case cmd != "":
			if _, err := strconv.Atoi(cmd); err == nil {
				c.report(c.selectNumbered(f, v, cmd))
				continue
			}
			c.printf("%s\n", help)
		}
	}
}

func (c *Console) selectNumbered(f *attempt.Flow, v attempt.View, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(v.Question.Options) {
		return attempt.ErrUnknownOption
	}
	return f.Select(v.Question.Options[n-1].ID)
}

func (c *Console) report(err error) {
	if err != nil {
		c.printf("⚠️  %s\n", attempt.UserMessage(err))
	}
}

func (c *Console) renderQuestion(v attempt.View) {
	c.printf("\n%s  (%d min)\n", v.Title, v.Duration)
	c.printf("Question %d of %d  %s %d%%\n", v.Number, v.Total, bar(v.Progress, 20), v.Progress)
	status := "○ Pending"
	if v.Answered {
		status = "✓ Answered"
	}
	c.printf("Q%d %s\n%s\n", v.Number, status, v.Question.Text)
	for i, o := range v.Question.Options {
		mark := " "
		if o.ID == v.Selected {
			mark = "*"
		}
		c.printf("  %s %d) %s\n", mark, i+1, o.Text)
	}
	if len(v.Question.Options) == 0 {
		c.printf("  No options available\n")
	}
	var dots strings.Builder
	for _, ind := range v.Indicators {
		switch {
		case ind.Active:
			dots.WriteString("◉")
		case ind.Answered:
			dots.WriteString("●")
		default:
			dots.WriteString("○")
		}
	}
	c.printf("%s\n", dots.String())
}

// Result prints the report for attemptID.
func (c *Console) Result(ctx context.Context, attemptID quiz.ID) error {
	rep, err := result.Load(ctx, c.api, attemptID)
	if err != nil {
		c.printf("⚠️  %s\n", result.MsgLoadFailed)
		return err
	}
	if rep.Celebrate {
		c.printf("🎊 🎉 🎊\n")
	}
	c.printf("%s Grade %s  Score %d%%\n%s\n\n", rep.Grade.Badge, rep.Grade.Letter, rep.Score, rep.Message)
	c.printf("Correct: %d  Incorrect: %d  Total: %d  Accuracy: %d%%\n", rep.CorrectAnswers, rep.IncorrectAnswers, rep.TotalQuestions, rep.Accuracy)
	for i, d := range rep.Details {
		mark := "✗"
		if d.IsCorrect {
			mark = "✓"
		}
		c.printf("\n%d. %s %s\n   Your answer: %s\n", i+1, d.QuestionText, mark, d.UserAnswer)
		if !d.IsCorrect {
			c.printf("   Correct answer: %s\n", d.CorrectAnswer)
		}
	}
	return nil
}
