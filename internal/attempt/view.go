package attempt

import "github.com/mind-engage/mindengage-quiz/internal/quiz"

// Indicator is one progress dot.
type Indicator struct {
	Index    int
	Number   int
	Active   bool
	Answered bool
}

// View is an immutable snapshot of a Flow for renderers.
type View struct {
	Phase     Phase
	Message   string // error text while Failed
	QuizID    quiz.ID
	Title     string
	Duration  int
	AttemptID quiz.ID

	Index    int
	Number   int // Index+1
	Total    int
	Progress int

	Question  quiz.Question
	Selected  quiz.ID
	Answered  bool // displayed question acknowledged
	Recorded  bool // acknowledged and still submitting: show "answer recorded"
	CanSubmit bool
	CanGoBack bool
	IsLast    bool

	Indicators []Indicator
}

func (f *Flow) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.state
	v := View{
		Phase:     s.Phase(),
		Message:   s.Message(),
		QuizID:    f.quizID,
		Title:     f.quiz.Title,
		Duration:  f.quiz.Duration,
		AttemptID: f.attemptID,
		Index:     s.Index(),
		Number:    s.Index() + 1,
		Total:     s.Total(),
		Progress:  s.Progress(),
		CanSubmit: s.CanSubmit(),
		CanGoBack: s.Phase() == Ready && s.Index() > 0,
		IsLast:    s.IsLast(),
	}
	if q, ok := f.quiz.Question(s.Index()); ok && s.Total() > 0 {
		v.Question = q
		v.Selected, _ = s.Selection(q.ID)
		v.Answered = s.IsAnswered(q.ID)
		v.Recorded = v.Answered && s.Phase() == Submitting
	}
	v.Indicators = make([]Indicator, 0, s.Total())
	for i := 0; i < s.Total(); i++ {
		q, _ := f.quiz.Question(i)
		v.Indicators = append(v.Indicators, Indicator{
			Index:    i,
			Number:   i + 1,
			Active:   i == s.Index(),
			Answered: s.IsAnswered(q.ID),
		})
	}
	return v
}
