package hlfile

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatError reports a file that does not follow the BSP or WAD layout.
type FormatError struct {
	Kind   string // "BSP", "WAD" or "miptex"
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func formatErrorf(kind string, format string, args ...interface{}) error {
	return errors.WithStack(&FormatError{Kind: kind, Reason: fmt.Sprintf(format, args...)})
}

// MissingMipError is returned together with a usable texture header when one
// of the mip offsets is zero. The texture has no pixel levels.
type MissingMipError struct {
	Name string
}

func (e *MissingMipError) Error() string {
	return fmt.Sprintf("miptex %q: missing mip offsets", e.Name)
}

// IsFormatError reports whether err was caused by malformed input.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
