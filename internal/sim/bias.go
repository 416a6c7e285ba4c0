// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"time"

	"pgregory.net/rapid"
)

// Biased draws values in [Min, Max] that cluster around Med.
type Biased[T int | time.Duration] struct {
	Min T
	Med T
	Max T
}

func (c Biased[T]) Draw(t *rapid.T, name string) T {
	if c.Med < c.Min || c.Max < c.Med {
		panic(fmt.Sprint("invalid Biased config:", c))
	}
	// Drawing an offset from Med takes advantage of rapid's bias toward values
	// near zero as well as toward the bounds.
	offset := rapid.Int64Range(int64(c.Min-c.Med), int64(c.Max-c.Med)).Draw(t, name+"(offset)")
	return c.Med + T(offset)
}
