// Package alloc tracks end-of-file space allocation for the append-oriented
// container writer.
package alloc

// Allocator hands out file space by advancing an end-of-file watermark.
// Freed space is never reclaimed; replaced datasets leave dead extents.
type Allocator struct {
	eof   uint64
	count int
}

// New creates an allocator whose next allocation starts at eof.
func New(eof uint64) *Allocator {
	return &Allocator{eof: eof}
}

// Alloc reserves size bytes and returns the starting offset.
func (a *Allocator) Alloc(size uint64) uint64 {
	addr := a.eof
	a.eof += size
	a.count++
	return addr
}

// EOF returns the current end-of-file watermark.
func (a *Allocator) EOF() uint64 {
	return a.eof
}

// Count returns the number of allocations performed.
func (a *Allocator) Count() int {
	return a.count
}
