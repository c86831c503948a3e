package wikipage

import (
	"errors"
	"fmt"
)

// ErrStructuralMismatch is matched by every *StructuralMismatchError via errors.Is.
var ErrStructuralMismatch = errors.New("page structure mismatch")

// StructuralMismatchError reports that an element the crawler expects on a
// person page (title, infobox, portrait) is missing.
type StructuralMismatchError struct {
	// URL is the page that was inspected.
	URL string

	// Element names the missing element, e.g. "infobox".
	Element string
}

// Error implements the error interface.
func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.URL, e.Element)
}

// Is reports whether target is ErrStructuralMismatch.
func (e *StructuralMismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}
