// internal/writer/latest.go
package writer

import (
	"sync"

	"github.com/tamzrod/register-poller/internal/poller"
)

// Latest keeps the most recent successful cycle in memory for the HTTP surface.
type Latest struct {
	mu  sync.RWMutex
	res poller.PollResult
	ok  bool
}

func NewLatest() *Latest {
	return &Latest{}
}

func (l *Latest) Write(res poller.PollResult) error {
	if res.Err != nil {
		return ErrFailedCycle
	}
	l.mu.Lock()
	l.res = res
	l.ok = true
	l.mu.Unlock()
	return nil
}

// Get returns the last delivered cycle, false before the first one.
func (l *Latest) Get() (poller.PollResult, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.res, l.ok
}
