package web

import (
	"context"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// slot is one quiz's flow within a session. ready closes once Init has
// returned; err is its result and is only read after ready.
type slot struct {
	flow  *attempt.Flow
	ready chan struct{}
	err   error
}

func (s *slot) initialized() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// reusable reports whether a new visit should join s rather than replace it.
func (s *slot) reusable() bool {
	if !s.initialized() {
		return true
	}
	if s.err != nil {
		return false
	}
	switch s.flow.State().Phase() {
	case attempt.Failed, attempt.Finished:
		return false
	}
	return true
}

type entry struct {
	flows map[quiz.ID]*slot
	flash string
	seen  time.Time
}

// Registry holds each browser session's in-progress attempts and its pending
// notification. Idle sessions are dropped after ttl.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, now: time.Now, entries: map[string]*entry{}}
}

// touch returns the entry for sid, creating it. Callers hold mu.
func (r *Registry) touch(sid string) *entry {
	e, ok := r.entries[sid]
	if !ok {
		e = &entry{flows: map[quiz.ID]*slot{}}
		r.entries[sid] = e
	}
	e.seen = r.now()
	return e
}

// Flow returns the session's started flow for quizID. A flow still
// initializing, or one whose Init failed, is not returned.
func (r *Registry) Flow(sid string, quizID quiz.ID) (*attempt.Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.touch(sid).flows[quizID]
	if !ok || !s.initialized() || s.err != nil {
		return nil, false
	}
	return s.flow, true
}

// Start returns the session's live flow for quizID, creating and
// initializing one with newFlow when there is none. The slot is claimed
// under mu before Init runs, so concurrent first visits share one attempt:
// later callers wait for the first one's Init and get its result.
func (r *Registry) Start(ctx context.Context, sid string, quizID quiz.ID, newFlow func() *attempt.Flow) (*attempt.Flow, error) {
	r.mu.Lock()
	e := r.touch(sid)
	if s, ok := e.flows[quizID]; ok && s.reusable() {
		r.mu.Unlock()
		select {
		case <-s.ready:
			return s.flow, s.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s := &slot{flow: newFlow(), ready: make(chan struct{})}
	e.flows[quizID] = s
	r.mu.Unlock()

	s.err = s.flow.Init(ctx)
	close(s.ready)
	if s.err != nil {
		r.Drop(sid, s.flow)
	}
	return s.flow, s.err
}

// Drop forgets f, but only if it is still the flow registered for its quiz.
func (r *Registry) Drop(sid string, f *attempt.Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return
	}
	if cur, ok := e.flows[f.QuizID()]; ok && cur.flow == f {
		delete(e.flows, f.QuizID())
	}
}

func (r *Registry) SetFlash(sid, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(sid).flash = msg
}

// TakeFlash returns and clears the pending notification.
func (r *Registry) TakeFlash(sid string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return ""
	}
	msg := e.flash
	e.flash = ""
	return msg
}

// Sweep removes sessions idle for longer than ttl and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	n := 0
	for sid, e := range r.entries {
		if e.seen.Before(cutoff) {
			delete(r.entries, sid)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}
