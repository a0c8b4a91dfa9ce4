package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier issued by the quiz API. The API may send ids as JSON
// numbers or strings; both decode to the same ID.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quiz id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Option struct {
	ID   ID     `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID      ID       `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Option returns the option with the given id, if the question has one.
func (q Question) Option(id ID) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

type Quiz struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Duration    int        `json:"duration"` // minutes
	Questions   []Question `json:"questions"`
}

func (q Quiz) QuestionIDs() []ID {
	out := make([]ID, 0, len(q.Questions))
	for _, qq := range q.Questions {
		out = append(out, qq.ID)
	}
	return out
}

// Question returns the i-th question, or false when i is out of range.
func (q Quiz) Question(i int) (Question, bool) {
	if i < 0 || i >= len(q.Questions) {
		return Question{}, false
	}
	return q.Questions[i], true
}

// Summary is one row of the quiz catalog.
type Summary struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"questionCount"`
}

// Answer is the body of a submit-answer call.
type Answer struct {
	QuestionID       ID `json:"questionId"`
	SelectedOptionID ID `json:"selectedOptionId"`
}

type Detail struct {
	QuestionText  string `json:"questionText"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// Result is the server-scored outcome of a finalized attempt.
type Result struct {
	Score            int      `json:"score"` // 0..100
	CorrectAnswers   int      `json:"correctAnswers"`
	IncorrectAnswers int      `json:"incorrectAnswers"`
	TotalQuestions   int      `json:"totalQuestions"`
	Details          []Detail `json:"details"`
}
