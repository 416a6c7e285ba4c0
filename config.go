// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"runtime"

	"go.uber.org/zap"
)

// Config holds the sizing and tuning parameters of a [System].
type Config struct {
	// MaxJobs is the number of job objects in the pool, and therefore the
	// maximum number of jobs that may be alive at once.
	MaxJobs uint32

	// MaxBarriers is the number of barriers in the pool.
	MaxBarriers uint32

	// NumThreads is the number of worker goroutines. A negative value selects
	// one fewer than the number of CPUs, leaving a CPU for the goroutine that
	// waits on barriers.
	NumThreads int

	// QueueLength is the capacity of the job queue and must be a power of two.
	// Jobs that queue other jobs need room for them: if every worker blocks
	// queueing into a full queue, none is left to drain it.
	QueueLength uint32

	// Backoff is used whenever a fixed resource is exhausted.
	Backoff Backoff

	// Logger receives diagnostics. Nil means zap.L().
	Logger *zap.Logger

	// LockOSThread pins each worker goroutine to its own OS thread.
	LockOSThread bool

	// CondSemaphore makes the system's semaphores park goroutines on a
	// sync.Cond instead of a channel.
	CondSemaphore bool
}

// DefaultQueueLength is the default capacity of the job queue.
const DefaultQueueLength = 1024

// DefaultConfig returns the configuration used by [NewSystem] before options
// are applied.
func DefaultConfig() Config {
	return Config{
		MaxJobs:     1024,
		MaxBarriers: 8,
		NumThreads:  -1,
		QueueLength: DefaultQueueLength,
		Backoff:     DefaultBackoff,
	}
}

// An Option adjusts a [Config].
type Option func(*Config)

// WithQueueLength sets the capacity of the job queue.
func WithQueueLength(n uint32) Option {
	return func(c *Config) {
		c.QueueLength = n
	}
}

// WithBackoff sets the backoff used while stalled on an exhausted resource.
func WithBackoff(b Backoff) Option {
	return func(c *Config) {
		c.Backoff = b
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithLockOSThread pins each worker goroutine to its own OS thread.
func WithLockOSThread() Option {
	return func(c *Config) {
		c.LockOSThread = true
	}
}

// WithCondSemaphore selects the sync.Cond based semaphore implementation.
func WithCondSemaphore() Option {
	return func(c *Config) {
		c.CondSemaphore = true
	}
}

func (c *Config) validate() {
	if c.MaxJobs == 0 {
		panic("MaxJobs must be positive")
	}
	if c.MaxBarriers == 0 {
		panic("MaxBarriers must be positive")
	}
	if c.QueueLength < 2 || c.QueueLength&(c.QueueLength-1) != 0 {
		panic("queue length must be a power of two")
	}
	if c.Backoff == nil {
		c.Backoff = DefaultBackoff
	}
}

func resolveNumThreads(n int) int {
	if n < 0 {
		n = max(runtime.NumCPU()-1, 0)
	}
	return n
}
