package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used in structure padding to prevent false sharing.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// PaddedInt64 is an int64 alone on its cache line.
type PaddedInt64 struct {
	V int64 // accessed atomically
	_ [CacheLineSize - 8%CacheLineSize]byte
}
