// Package xunsafe provides a more convenient interface for performing unsafe
// operations than Go's built-in package unsafe.
package xunsafe

import (
	"sync"

	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by having [sync.Mutex] as its element type; the zero length
// keeps it from taking any space.
type NoCopy [0]sync.Mutex

// Int is any integer type.
type Int = layout.Int
