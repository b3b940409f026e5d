package heap

import (
	"testing"

	"github.com/lucidc/cintp/internal/ast"
)

func TestAllocateReturnsDisjointGrowingRanges(t *testing.T) {
	h := New()
	a := h.Allocate(3)
	b := h.Allocate(2)

	if a == 0 || b == 0 {
		t.Fatalf("allocated addresses must never be the null address, got a=%d b=%d", a, b)
	}
	if b < a+3 {
		t.Fatalf("expected b (%d) to start at or after a's end (%d)", b, a+3)
	}
	for i := int64(0); i < 3; i++ {
		if h.Load(a+i) != 0 {
			t.Fatalf("expected zero-initialized cell at a+%d", i)
		}
	}
}

func TestFreeAtTipReclaimsAddresses(t *testing.T) {
	h := New()
	a := h.Allocate(4)
	b := h.Allocate(2)
	h.Free(b)

	// b sat at the heap's high-water mark, so freeing it rewinds nextAddr
	// and the next allocation reuses b's former base.
	c := h.Allocate(2)
	if c != b {
		t.Fatalf("expected free-at-tip reclaim to reuse address %d, got %d", b, c)
	}

	h.Store(a, 42)
	if h.Load(a) != 42 {
		t.Fatalf("expected earlier allocation to be unaffected by reclaim")
	}
}

func TestFreeInMiddleLeaksRatherThanCorrupting(t *testing.T) {
	h := New()
	a := h.Allocate(2)
	_ = h.Allocate(2)
	h.Free(a)

	c := h.Allocate(2)
	if c == a {
		t.Fatalf("freeing a non-tip buffer must not be reused by the next allocation")
	}
}

func TestFreeOfNullIsNoop(t *testing.T) {
	h := New()
	h.Free(0) // must not panic
}

func TestFreeOfUnallocatedPanics(t *testing.T) {
	h := New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic freeing an unallocated address")
		}
	}()
	h.Free(999)
}

func TestAddressOfIsStablePerExpression(t *testing.T) {
	h := New()
	var e1 ast.Expr = &ast.IntegerLiteral{Value: 7}
	var e2 ast.Expr = &ast.IntegerLiteral{Value: 7}

	a1 := h.AddressOf(e1, 10)
	a2 := h.AddressOf(e1, 10)
	if a1 != a2 {
		t.Fatalf("expected AddressOf to return the same address for the same expression, got %d then %d", a1, a2)
	}

	b1 := h.AddressOf(e2, 20)
	if b1 == a1 {
		t.Fatalf("expected distinct expressions to get distinct addresses")
	}

	if h.Load(a1) != 10 || h.Load(b1) != 20 {
		t.Fatalf("expected each address to hold its own seeded value")
	}

	if expr, ok := h.NamedVariableExpr(a1); !ok || expr != e1 {
		t.Fatalf("expected NamedVariableExpr to return the original expression")
	}
}
