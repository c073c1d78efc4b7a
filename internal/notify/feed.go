// Package notify holds an operator session's bounded notification feed.
package notify

import (
	"sync"
	"time"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

const DefaultCapacity = 10

// Feed keeps the newest entries first and drops the oldest beyond its capacity.
type Feed struct {
	mu       sync.RWMutex
	entries  []entity.Notification
	capacity int
	now      func() time.Time
}

func NewFeed(capacity int, now func() time.Time) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Feed{capacity: capacity, now: now}
}

func (f *Feed) Add(message string, kind constants.NotificationKind) entity.Notification {
	if kind == "" {
		kind = constants.NotifyInfo
	}
	n := entity.Notification{Timestamp: f.now(), Message: message, Kind: kind}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]entity.Notification{n}, f.entries...)
	if len(f.entries) > f.capacity {
		f.entries = f.entries[:f.capacity]
	}
	return n
}

// List returns every retained entry, newest first.
func (f *Feed) List() []entity.Notification {
	return f.Recent(f.capacity)
}

// Recent returns up to n entries, newest first.
func (f *Feed) Recent(n int) []entity.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if n > len(f.entries) {
		n = len(f.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make([]entity.Notification, n)
	copy(out, f.entries[:n])
	return out
}
