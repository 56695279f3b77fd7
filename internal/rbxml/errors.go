package rbxml

import (
	"errors"
	"fmt"
)

// ErrStructural matches every *StructuralError via errors.Is.
var ErrStructural = errors.New("structural error")

// StructuralError reports a document that is not parseable XML or holds no
// asset items.
type StructuralError struct {
	Reason string
	Err    error // underlying parser error, if any
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rbxml: %s: %v", e.Reason, e.Err)
	}
	return "rbxml: " + e.Reason
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStructural) match.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }
