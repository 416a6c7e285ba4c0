// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sema

import (
	"sync"
)

// ChanParker parks goroutines on a buffered channel, one element per
// wake-up. A Post that would overflow the buffer blocks until a parked
// goroutine drains it, which is always imminent because Post is only called
// for goroutines that have already committed to waiting.
type ChanParker struct {
	ch chan struct{}
}

// NewChanParker returns a ChanParker sized for the given number of
// simultaneously parked goroutines.
func NewChanParker(maxWaiters int) *ChanParker {
	return &ChanParker{ch: make(chan struct{}, max(maxWaiters, 1))}
}

func (p *ChanParker) Post(n int) {
	for range n {
		p.ch <- struct{}{}
	}
}

func (p *ChanParker) Wait() {
	<-p.ch
}

// CondParker parks goroutines on a condition variable guarding a count of
// posted wake-ups.
type CondParker struct {
	mu      sync.Mutex
	cond    sync.Cond
	wakeups int
}

// NewCondParker returns a ready to use CondParker.
func NewCondParker() *CondParker {
	p := &CondParker{}
	p.cond.L = &p.mu
	return p
}

func (p *CondParker) Post(n int) {
	p.mu.Lock()
	p.wakeups += n
	p.mu.Unlock()
	if n > 1 {
		p.cond.Broadcast()
	} else {
		p.cond.Signal()
	}
}

func (p *CondParker) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.wakeups == 0 {
		p.cond.Wait()
	}
	p.wakeups--
}
