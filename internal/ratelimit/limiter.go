// Package ratelimit implements fixed-window request counters.
package ratelimit

import (
	"sync"
	"time"
)

type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
)

type BucketKind string

const (
	BucketIP   BucketKind = "ip"
	BucketUser BucketKind = "user"
)

// Rule selects a limit by request scope and the kind of bucket the caller
// was sorted into.
type Rule struct {
	Scope Scope
	Kind  BucketKind
}

// Config holds the window length and the per-rule request budget.
// Rules without a positive limit are unlimited.
type Config struct {
	Window time.Duration
	Limits map[Rule]int
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   int64
	ResetIn   int64
}

type entryKey struct {
	rule   Rule
	bucket string
}

type window struct {
	start int64
	count int
}

// maxEntries bounds memory before stale windows are swept.
const maxEntries = 100000

type Limiter struct {
	windowS int64
	limits  map[Rule]int

	mu      sync.Mutex
	entries map[entryKey]window
}

func New(cfg Config) *Limiter {
	windowS := int64(cfg.Window / time.Second)
	if windowS <= 0 {
		windowS = 60
	}
	limits := make(map[Rule]int, len(cfg.Limits))
	for r, n := range cfg.Limits {
		limits[r] = n
	}
	return &Limiter{
		windowS: windowS,
		limits:  limits,
		entries: make(map[entryKey]window, 1024),
	}
}

// Take counts one request against bucket under rule.
func (l *Limiter) Take(now time.Time, rule Rule, bucket string) Result {
	return l.check(now, rule, bucket, true)
}

// Peek reports whether a request would be allowed without counting it.
func (l *Limiter) Peek(now time.Time, rule Rule, bucket string) Result {
	return l.check(now, rule, bucket, false)
}

func (l *Limiter) check(now time.Time, rule Rule, bucket string, consume bool) Result {
	unixNow := now.Unix()
	limit := l.limits[rule]
	if limit <= 0 {
		return Result{Allowed: true, ResetAt: unixNow}
	}

	start := unixNow - unixNow%l.windowS
	resetAt := start + l.windowS
	k := entryKey{rule: rule, bucket: bucket}

	l.mu.Lock()
	w := l.entries[k]
	if w.start != start {
		w = window{start: start}
	}
	allowed := w.count < limit
	if allowed && consume {
		w.count++
		l.entries[k] = w
		if len(l.entries) > maxEntries {
			l.sweep(start)
		}
	}
	l.mu.Unlock()

	return Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: limit - w.count,
		ResetAt:   resetAt,
		ResetIn:   resetAt - unixNow,
	}
}

// sweep drops counters from windows before current. Caller holds mu.
func (l *Limiter) sweep(current int64) {
	for k, w := range l.entries {
		if w.start < current {
			delete(l.entries, k)
		}
	}
}
