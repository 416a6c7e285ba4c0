// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package jobsys

import (
	"fmt"
)

// Color is a diagnostic color attached to a job so that profilers and
// visualizers can tell kinds of jobs apart. It has no effect on scheduling.
type Color struct {
	R, G, B, A uint8
}

// Commonly used job colors.
var (
	ColorBlack  = Color{0, 0, 0, 255}
	ColorWhite  = Color{255, 255, 255, 255}
	ColorRed    = Color{255, 0, 0, 255}
	ColorGreen  = Color{0, 255, 0, 255}
	ColorBlue   = Color{0, 0, 255, 255}
	ColorYellow = Color{255, 255, 0, 255}
	ColorCyan   = Color{0, 255, 255, 255}
	ColorPurple = Color{255, 0, 255, 255}
	ColorOrange = Color{255, 165, 0, 255}
	ColorGrey   = Color{128, 128, 128, 255}
)

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
