// Package heap implements the interpreter's virtual address space: a flat,
// cell-addressed store that backs both malloc'd buffers and the addresses
// produced by the `&` operator. It is a direct translation of the original
// Clang-backed interpreter's Heap class (environment.hpp): addresses are
// plain integers counted in cells (not bytes), address 0 is reserved for
// the null pointer, and allocation only ever grows a monotonically
// increasing high-water mark except when the freed buffer sits at the very
// tip of that mark.
package heap

import (
	"fmt"

	"github.com/lucidc/cintp/internal/ast"
)

// Heap is the interpreter's single virtual address space, shared by every
// call frame.
type Heap struct {
	buffers  map[int64]int64 // allocation base -> cell count
	values   map[int64]int64 // cell address -> stored value
	pointers map[int64]ast.Expr // address of a &-taken named variable -> the DeclRefExpr/ArraySubscriptExpr it addresses
	nextAddr int64
}

// New creates an empty Heap. Address 0 is never allocated, so it is always
// safe to treat as the null pointer.
func New() *Heap {
	return &Heap{
		buffers:  make(map[int64]int64),
		values:   make(map[int64]int64),
		pointers: make(map[int64]ast.Expr),
		nextAddr: 1,
	}
}

// Allocate reserves `cells` contiguous addresses, zero-initialized, and
// returns the base address. A request for 0 cells returns the current
// high-water mark without advancing it, so the next allocation returns
// the same base.
func (h *Heap) Allocate(cells int64) int64 {
	base := h.nextAddr
	h.nextAddr += cells
	h.buffers[base] = cells
	for i := int64(0); i < cells; i++ {
		h.values[base+i] = 0
	}
	return base
}

// Free releases a buffer previously returned by Allocate. Freeing address 0
// (the null pointer) is a no-op, matching free(NULL). Freeing anything else
// that was not allocated is a programmer error in the interpreter itself
// (never a user-facing one, since the evaluator only ever frees addresses
// it got from Allocate or a cast of one) and panics.
//
// Only a buffer sitting at the current high-water mark is reclaimed by
// shrinking nextAddr; freeing any other buffer leaks its cells for the
// remainder of the run. This mirrors the reference interpreter's Free
// exactly, including its limitation: a frame's locals are never reclaimed
// when the frame pops.
func (h *Heap) Free(base int64) {
	if base == 0 {
		return
	}
	size, ok := h.buffers[base]
	if !ok {
		panic(fmt.Sprintf("heap: free of unallocated address %d", base))
	}
	for i := int64(0); i < size; i++ {
		delete(h.values, base+i)
	}
	delete(h.buffers, base)
	if base+size == h.nextAddr {
		h.nextAddr = base
	}
}

// Store writes val to a previously allocated address.
func (h *Heap) Store(addr, val int64) {
	if _, ok := h.values[addr]; !ok {
		panic(fmt.Sprintf("heap: store to unallocated address %d", addr))
	}
	h.values[addr] = val
}

// Load reads the value at a previously allocated address.
func (h *Heap) Load(addr int64) int64 {
	val, ok := h.values[addr]
	if !ok {
		panic(fmt.Sprintf("heap: load from unallocated address %d", addr))
	}
	return val
}

// NamedVariableExpr returns the expression that owns the address-of record
// at addr, if any. Every address produced by AddressOf carries this
// back-reference, whatever the operand expression was; the evaluator uses
// it only when the owner is a plain variable reference, so that an
// assignment through a dereferenced pointer also updates the frame's copy
// of that variable, matching the original's getRealAddr/mirroring.
func (h *Heap) NamedVariableExpr(addr int64) (ast.Expr, bool) {
	e, ok := h.pointers[addr]
	return e, ok
}

// AddressOf returns the stable virtual address for the `&`-taken
// expression expr, allocating a fresh single-cell slot (and recording the
// expr->address back-reference) the first time expr's address is taken.
// val is the expression's current value, used to seed the new cell.
//
// The lookup is a linear scan over the recorded back-references, same as
// getImageAddr in the reference implementation — the heap never grows
// large enough in this interpreter's target programs for that to matter.
func (h *Heap) AddressOf(expr ast.Expr, val int64) int64 {
	for addr, e := range h.pointers {
		if e == expr {
			return addr
		}
	}
	addr := h.Allocate(1)
	h.values[addr] = val
	h.pointers[addr] = expr
	return addr
}
