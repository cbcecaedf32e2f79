// Package ids hands out process-unique identifiers for meshes and materials.
package ids

import "sync/atomic"

var last atomic.Uint32

// Next returns a new non-zero identifier.
func Next() uint32 {
	return last.Add(1)
}
