package heart

import "fmt"

// UnknownCategoryError is returned when a categorical value is not part of
// its field's label mapping.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %q", e.Value, e.Field)
}
