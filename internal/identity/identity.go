// Package identity supplies the per-attempt user identifier sent when an
// attempt is started. It stands in for a real session identity; nothing here
// is durable or authenticated.
package identity

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Provider interface {
	NewUserID() string
}

// Clock issues "user_<unix millis>" ids. Two calls within the same
// millisecond still get distinct, increasing ids.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) NewUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return "user_" + strconv.FormatInt(ms, 10)
}

// Random issues "user_<uuid>" ids.
type Random struct{}

func (Random) NewUserID() string { return "user_" + uuid.NewString() }

// FromName maps the configured identity name to a Provider.
func FromName(name string) (Provider, error) {
	switch name {
	case "", "clock":
		return NewClock(nil), nil
	case "uuid":
		return Random{}, nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", name)
	}
}
