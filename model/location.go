package model

import "fmt"

// Location is a source code span. It is a value type: two Locations with the
// same fields are interchangeable.
type Location struct {
	FilePath  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath, l.StartLine, l.StartCol)
}
