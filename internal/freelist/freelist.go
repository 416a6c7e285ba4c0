// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package freelist provides a fixed-capacity pool of reusable objects
// addressed by index. Allocation and release are lock-free and safe for
// concurrent use from any goroutine.
//
// The head of the free list packs the index of the first free object in the
// low 32 bits and an allocation tag in the high 32 bits. Every successful
// update uses a new tag, so a compare-and-swap against a head that was popped
// and pushed back in the meantime fails instead of corrupting the list.
package freelist

import (
	"sync/atomic"
)

// Invalid is the index returned when the list is exhausted.
const Invalid = ^uint32(0)

type entry[T any] struct {
	obj   T
	next  atomic.Uint32
	inUse atomic.Bool
}

// List is a fixed-capacity free list of T. The zero value is empty and has no
// capacity; use [New].
type List[T any] struct {
	entries []entry[T]
	head    atomic.Uint64
	tag     atomic.Uint32
	free    atomic.Int64
}

// New creates a list with room for capacity objects, all initially free.
func New[T any](capacity uint32) *List[T] {
	if capacity == 0 || capacity == Invalid {
		panic("invalid free list capacity")
	}
	l := &List[T]{
		entries: make([]entry[T], capacity),
	}
	for i := range l.entries {
		next := uint32(i + 1)
		if next == capacity {
			next = Invalid
		}
		l.entries[i].next.Store(next)
	}
	l.head.Store(pack(0, 0))
	l.tag.Store(1)
	l.free.Store(int64(capacity))
	return l
}

func pack(index, tag uint32) uint64 {
	return uint64(tag)<<32 | uint64(index)
}

// Cap returns the total number of objects the list can hold.
func (l *List[T]) Cap() int {
	return len(l.entries)
}

// Free returns the number of objects currently available for allocation.
func (l *List[T]) Free() int {
	return int(l.free.Load())
}

// Alloc removes an object from the free list and returns its index, or
// [Invalid] if every object is in use. The object keeps whatever state it had
// when it was last released; callers are expected to reinitialize it.
func (l *List[T]) Alloc() uint32 {
	for {
		head := l.head.Load()
		first := uint32(head)
		if first == Invalid {
			return Invalid
		}
		e := &l.entries[first]
		next := e.next.Load()
		if l.head.CompareAndSwap(head, pack(next, l.tag.Add(1))) {
			if e.inUse.Swap(true) {
				panic("free list object allocated twice")
			}
			l.free.Add(-1)
			return first
		}
	}
}

// Release returns the object at index to the free list.
func (l *List[T]) Release(index uint32) {
	if index >= uint32(len(l.entries)) {
		panic("free list index out of range")
	}
	e := &l.entries[index]
	if !e.inUse.Swap(false) {
		panic("free list object released twice")
	}
	l.free.Add(1)
	for {
		head := l.head.Load()
		e.next.Store(uint32(head))
		if l.head.CompareAndSwap(head, pack(index, l.tag.Add(1))) {
			return
		}
	}
}

// Get returns a pointer to the object at index. The pointer remains valid for
// the lifetime of the list.
func (l *List[T]) Get(index uint32) *T {
	return &l.entries[index].obj
}
