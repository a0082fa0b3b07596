// Package videosearch finds tutorial videos on YouTube, caching results
// and enforcing a daily API quota budget.
package videosearch

import (
	"fmt"
	"sync"
	"time"
)

// API unit costs per the YouTube Data API v3 pricing table.
const (
	CostSearch    = 100
	CostVideoList = 1
	DefaultBudget = 10000
)

// QuotaExceededError is returned when a reservation would cross the
// daily budget. The call is refused; the budget is never overdrawn.
type QuotaExceededError struct {
	Requested int
	Used      int
	Budget    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("youtube quota exceeded: requested %d units with %d/%d used", e.Requested, e.Used, e.Budget)
}

// QuotaTracker reserves API units ahead of each call. Implementations
// fail closed: Reserve returns an error rather than allowing overspend.
type QuotaTracker interface {
	Reserve(units int) error
	Used() int
}

// DailyQuota is an in-memory QuotaTracker that resets at UTC midnight,
// matching the YouTube API's own reset schedule.
type DailyQuota struct {
	mu     sync.Mutex
	budget int
	used   int
	day    time.Time
	now    func() time.Time
}

// NewDailyQuota builds a tracker with the given daily unit budget.
// A non-positive budget falls back to the API default.
func NewDailyQuota(budget int) *DailyQuota {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &DailyQuota{budget: budget, now: time.Now}
}

// Reserve claims units from today's budget, rolling the window at UTC
// midnight. It returns a *QuotaExceededError when the budget would be
// crossed, leaving the spent count untouched.
func (q *DailyQuota) Reserve(units int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.now().UTC().Truncate(24 * time.Hour)
	if !today.Equal(q.day) {
		q.day = today
		q.used = 0
	}
	if q.used+units > q.budget {
		return &QuotaExceededError{Requested: units, Used: q.used, Budget: q.budget}
	}
	q.used += units
	return nil
}

// Used reports the units spent in the current window.
func (q *DailyQuota) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}
