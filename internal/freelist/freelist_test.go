// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package freelist_test

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/petenewcomb/jobsys-go/internal/freelist"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestListBasicFunctionality(t *testing.T) {
	chk := require.New(t)
	l := freelist.New[int](4)
	chk.Equal(4, l.Cap())
	chk.Equal(4, l.Free())

	seen := make(map[uint32]bool)
	for range 4 {
		i := l.Alloc()
		chk.NotEqual(freelist.Invalid, i)
		chk.False(seen[i])
		seen[i] = true
		*l.Get(i) = int(i) * 10
	}
	chk.Equal(0, l.Free())
	chk.Equal(freelist.Invalid, l.Alloc())

	l.Release(2)
	chk.Equal(1, l.Free())
	chk.Equal(20, *l.Get(2))
	chk.Equal(uint32(2), l.Alloc())
	chk.Equal(freelist.Invalid, l.Alloc())
}

func TestListPanics(t *testing.T) {
	chk := require.New(t)
	chk.PanicsWithValue("invalid free list capacity", func() { freelist.New[int](0) })

	l := freelist.New[int](2)
	chk.PanicsWithValue("free list object released twice", func() { l.Release(0) })
	chk.PanicsWithValue("free list index out of range", func() { l.Release(2) })
}

// TestListWithRapid uses rapid state machine testing to verify that the list
// hands out each index at most once and never loses one.
func TestListWithRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.Uint32Range(1, 32).Draw(t, "capacity")
		l := freelist.New[struct{}](capacity)
		allocated := make(map[uint32]bool)

		t.Repeat(map[string]func(*rapid.T){
			"alloc": func(t *rapid.T) {
				i := l.Alloc()
				if len(allocated) == int(capacity) {
					require.Equal(t, freelist.Invalid, i, "Alloc succeeded on exhausted list")
					return
				}
				require.NotEqual(t, freelist.Invalid, i, "Alloc failed with free objects")
				require.False(t, allocated[i], "index %d handed out twice", i)
				allocated[i] = true
			},
			"release": func(t *rapid.T) {
				if len(allocated) == 0 {
					t.Skip("nothing allocated")
				}
				var held []uint32
				for i := range allocated {
					held = append(held, i)
				}
				slices.Sort(held)
				i := rapid.SampledFrom(held).Draw(t, "index")
				l.Release(i)
				delete(allocated, i)
			},
			"": func(t *rapid.T) {
				require.Equal(t, int(capacity)-len(allocated), l.Free())
			},
		})
	})
}

func TestListConcurrency(t *testing.T) {
	chk := require.New(t)

	const capacity = 64
	l := freelist.New[atomic.Int32](capacity)
	goroutines := max(2, runtime.NumCPU())
	iterations := 100_000
	if testing.Short() {
		iterations /= 10
	}

	var overlaps atomic.Int64
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				i := l.Alloc()
				if i == freelist.Invalid {
					runtime.Gosched()
					continue
				}
				// Any other holder of the same index would make this
				// counter exceed one.
				if l.Get(i).Add(1) != 1 {
					overlaps.Add(1)
				}
				l.Get(i).Add(-1)
				l.Release(i)
			}
		}()
	}
	wg.Wait()

	chk.Zero(overlaps.Load())
	chk.Equal(capacity, l.Free())
}
