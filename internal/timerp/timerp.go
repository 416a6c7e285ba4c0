// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package timerp pools the timers used for short stalls so that a goroutine
// spinning on an exhausted resource does not allocate a timer per attempt.
package timerp

import (
	"sync"
	"time"
)

// Relies on [Go 1.23+ behavior]: Stop and Reset discard any undelivered
// expiry, so a pooled timer never carries a stale tick into its next use.
//
// [Go 1.23+ behavior]: https://pkg.go.dev/time#NewTimer
var pool = sync.Pool{
	New: func() any {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	},
}

func get() *time.Timer {
	return pool.Get().(*time.Timer)
}

func put(t *time.Timer) {
	t.Stop()
	pool.Put(t)
}

// Sleep blocks the calling goroutine for d using a pooled timer.
func Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	t := get()
	t.Reset(d)
	<-t.C
	put(t)
}
