package render

import "fmt"

// PackingOverflowError reports that a lightmap rectangle did not fit in the atlas.
// Rectangles placed before it stay in the atlas.
type PackingOverflowError struct {
	Width     int
	Height    int
	Placed    int
	Remaining int
}

func (e *PackingOverflowError) Error() string {
	return fmt.Sprintf("lightmap atlas too small for %dx%d: %d placed, %d left out",
		e.Width, e.Height, e.Placed, e.Remaining)
}
