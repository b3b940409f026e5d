package runtime

import (
	"strings"
	"testing"

	"github.com/lucidc/cintp/internal/lexer"
)

func TestStackPushPopOrdering(t *testing.T) {
	s := NewStack(8)
	globals := NewFrame()
	call := NewFrame()

	if s.Top() != nil {
		t.Fatalf("expected empty stack to have no Top()")
	}

	if err := s.Push("main", lexer.Position{Line: 1, Column: 1}, globals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Push("fact", lexer.Position{Line: 2, Column: 5}, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Top() != call {
		t.Fatalf("expected Top() to be the most recently pushed frame")
	}
	if s.Caller() != globals {
		t.Fatalf("expected Caller() to be the frame below Top()")
	}
	if s.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", s.Depth())
	}

	popped := s.Pop()
	if popped != call {
		t.Fatalf("expected Pop() to return the frame just pushed")
	}
	if s.Depth() != 1 {
		t.Fatalf("Depth() after Pop() = %d, want 1", s.Depth())
	}
}

func TestStackRejectsOverMaxDepth(t *testing.T) {
	s := NewStack(1)
	if err := s.Push("main", lexer.Position{}, NewFrame()); err != nil {
		t.Fatalf("unexpected error on first push: %v", err)
	}
	err := s.Push("recurse", lexer.Position{}, NewFrame())
	if err == nil {
		t.Fatalf("expected stack overflow error")
	}
	if !strings.Contains(err.Error(), "stack overflow") {
		t.Fatalf("unexpected error message: %v", err)
	}
	if s.Depth() != 1 {
		t.Fatalf("expected rejected push not to grow the stack, depth = %d", s.Depth())
	}
}

func TestStackTraceOrdering(t *testing.T) {
	s := NewStack(8)
	s.Push("main", lexer.Position{Line: 10}, NewFrame())
	s.Push("helper", lexer.Position{Line: 20}, NewFrame())

	trace := s.Trace()
	if len(trace) != 2 {
		t.Fatalf("Trace() has %d frames, want 2", len(trace))
	}
	if trace[0].FunctionName != "main" || trace[1].FunctionName != "helper" {
		t.Fatalf("unexpected trace order: %+v", trace)
	}
}
