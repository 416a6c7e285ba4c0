// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sema_test

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petenewcomb/jobsys-go/internal/sema"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var parkers = map[string]func(maxWaiters int) sema.Parker{
	"chan": func(maxWaiters int) sema.Parker { return sema.NewChanParker(maxWaiters) },
	"cond": func(int) sema.Parker { return sema.NewCondParker() },
}

func TestSemaphoreNonBlocking(t *testing.T) {
	for name, newParker := range parkers {
		t.Run(name, func(t *testing.T) {
			chk := require.New(t)
			s := sema.NewWithParker(newParker(1))
			chk.Equal(0, s.Value())
			s.Release(3)
			chk.Equal(3, s.Value())
			s.Acquire(2)
			chk.Equal(1, s.Value())
			s.Acquire(1)
			chk.Equal(0, s.Value())
		})
	}
}

func TestSemaphoreInvalidCountPanics(t *testing.T) {
	chk := require.New(t)
	s := sema.New(1)
	chk.PanicsWithValue("release count must be positive", func() { s.Release(0) })
	chk.PanicsWithValue("acquire count must be positive", func() { s.Acquire(-1) })
	chk.PanicsWithValue("parker must be non-nil", func() { sema.NewWithParker(nil) })
}

func TestSemaphoreBlocksUntilReleased(t *testing.T) {
	for name, newParker := range parkers {
		t.Run(name, func(t *testing.T) {
			chk := require.New(t)
			s := sema.NewWithParker(newParker(1))

			var acquired atomic.Bool
			done := make(chan struct{})
			go func() {
				defer close(done)
				s.Acquire(2)
				acquired.Store(true)
			}()

			// The waiter shows up as a negative count once parked.
			chk.Eventually(func() bool { return s.Value() == -2 }, time.Second, time.Millisecond)

			s.Release(1)
			time.Sleep(10 * time.Millisecond)
			chk.False(acquired.Load())
			chk.Equal(-1, s.Value())

			s.Release(1)
			<-done
			chk.True(acquired.Load())
			chk.Equal(0, s.Value())
		})
	}
}

func TestSemaphoreOversubscribedRelease(t *testing.T) {
	for name, newParker := range parkers {
		t.Run(name, func(t *testing.T) {
			chk := require.New(t)
			s := sema.NewWithParker(newParker(4))

			var wg sync.WaitGroup
			for range 3 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					s.Acquire(1)
				}()
			}
			chk.Eventually(func() bool { return s.Value() == -3 }, time.Second, time.Millisecond)

			// Only three goroutines are parked, the other seven units remain
			// available.
			s.Release(10)
			wg.Wait()
			chk.Equal(7, s.Value())
		})
	}
}

// TestSemaphoreWithRapid checks the accounting against a simple integer model
// without ever blocking.
func TestSemaphoreWithRapid(t *testing.T) {
	for name, newParker := range parkers {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				s := sema.NewWithParker(newParker(1))
				model := 0

				t.Repeat(map[string]func(*rapid.T){
					"release": func(t *rapid.T) {
						n := rapid.IntRange(1, 16).Draw(t, "n")
						s.Release(n)
						model += n
					},
					"acquire": func(t *rapid.T) {
						if model == 0 {
							t.Skip("nothing to acquire")
						}
						n := rapid.IntRange(1, model).Draw(t, "n")
						s.Acquire(n)
						model -= n
					},
					"": func(t *rapid.T) {
						require.Equal(t, model, s.Value())
					},
				})
			})
		})
	}
}

// TestSemaphoreConcurrentAccounting releases exactly as many units as are
// acquired, in randomly sized chunks, and checks that every acquirer returns
// and that no unit is left over or double counted.
func TestSemaphoreConcurrentAccounting(t *testing.T) {
	for name, newParker := range parkers {
		t.Run(name, func(t *testing.T) {
			chk := require.New(t)

			acquirers := 16
			iterations := 2000
			if testing.Short() {
				iterations /= 10
			}
			s := sema.NewWithParker(newParker(acquirers))

			amounts := make([][]int, acquirers)
			total := 0
			for i := range amounts {
				amounts[i] = make([]int, iterations)
				for j := range amounts[i] {
					amounts[i][j] = 1 + rand.IntN(4)
					total += amounts[i][j]
				}
			}

			var acquiredTotal atomic.Int64
			var wg sync.WaitGroup
			wg.Add(acquirers)
			for i := range acquirers {
				go func() {
					defer wg.Done()
					for _, n := range amounts[i] {
						s.Acquire(n)
						acquiredTotal.Add(int64(n))
					}
				}()
			}

			released := 0
			for released < total {
				n := min(1+rand.IntN(8), total-released)
				s.Release(n)
				released += n
			}

			wg.Wait()
			chk.Equal(int64(total), acquiredTotal.Load())
			chk.Equal(0, s.Value())
		})
	}
}
