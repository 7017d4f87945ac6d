package post

import "fmt"

// CompositionError reports a post template that does not fit the lot
// fields: an unknown placeholder, a bad format spec or broken syntax. It
// is a configuration mistake, not a property of the selected lot.
type CompositionError struct {
	Field  string
	Reason string
}

func (e *CompositionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("composing post: %s", e.Reason)
	}
	return fmt.Sprintf("composing post: field %q: %s", e.Field, e.Reason)
}
