// Package idgen produces opaque identifiers, such as the boot ID printed in the
// kernel banner. NewFunc can be replaced in tests.
package idgen

import "github.com/google/uuid"

var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Short returns the first group of an identifier.
func Short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
