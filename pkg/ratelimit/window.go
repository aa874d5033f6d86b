// Package ratelimit counts attempts in sliding windows.
package ratelimit

import (
	"context"
	"time"
)

// Window is one sliding window with its cap. A Limit of 0 disables the window.
type Window struct {
	Name  string
	Limit int
	Span  time.Duration
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	// Violated names the window that denied the attempt.
	Violated string
}

// Subject is what a window counts: one account using one tool.
type Subject struct {
	Account string
	Tool    string
}

func (s Subject) Key() string {
	return s.Account + ":" + s.Tool
}

// WindowCounter checks every window for subject and, only when all of them
// have room, records the attempt in all of them atomically.
type WindowCounter interface {
	Allow(ctx context.Context, subject Subject, windows []Window, now time.Time) (Decision, error)
}

// Active drops disabled windows.
func Active(windows []Window) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Limit > 0 && w.Span > 0 {
			out = append(out, w)
		}
	}
	return out
}
