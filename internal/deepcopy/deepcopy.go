// Package deepcopy wraps github.com/tiendc/go-deepcopy to give controllers
// immutable copies of their configuration structs.
package deepcopy

import (
	"github.com/pkg/errors"
	"github.com/tiendc/go-deepcopy"
)

// Copy creates a deep copy of the source object. All slices, maps and
// nested pointers are recursively copied. A nil src yields (nil, nil).
func Copy[T any](src *T) (*T, error) {
	if src == nil {
		return nil, nil
	}

	var dst T
	if err := deepcopy.Copy(&dst, src); err != nil {
		return nil, errors.Wrapf(err, "failed to deep copy type %T", src)
	}
	return &dst, nil
}

// MustCopy is like Copy but panics on failure. Intended for controller
// construction where a copy failure is a programming error.
func MustCopy[T any](src *T) *T {
	dst, err := Copy(src)
	if err != nil {
		panic(err)
	}
	return dst
}
