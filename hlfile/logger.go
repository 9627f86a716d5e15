package hlfile

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger sets the logger used for decoder diagnostics such as lump counts.
// By default nothing is logged.
func SetLogger(l zerolog.Logger) {
	logger = l
}
