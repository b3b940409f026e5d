package ast

import "github.com/lucidc/cintp/internal/lexer"

// VarDecl declares one variable: a parameter, a global, or a local. Its
// pointer identity is the "declaration identity" §3 requires as a map key
// for StackFrame.vars.
type VarDecl struct {
	Name     string
	Type     *Type
	Init     Expr // nil if uninitialized
	Position lexer.Position
}

func (d *VarDecl) Pos() lexer.Position { return d.Position }
func (d *VarDecl) String() string {
	s := d.Type.String() + " " + d.Name
	if d.Init != nil {
		s += " = " + d.Init.String()
	}
	return s
}
func (d *VarDecl) declNode() {}

// FunctionDecl declares a function: its parameters (each a VarDecl bound
// fresh per call, per §4.3.3) and its body. Body is nil for a
// declaration-only prototype.
type FunctionDecl struct {
	Name       string
	Params     []*VarDecl
	ReturnType *Type
	Body       *BlockStmt
	Position   lexer.Position
}

func (d *FunctionDecl) Pos() lexer.Position { return d.Position }
func (d *FunctionDecl) String() string {
	s := d.ReturnType.String() + " " + d.Name + "("
	for i, p := range d.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	s += ")"
	if d.Body != nil {
		s += " " + d.Body.String()
	} else {
		s += ";"
	}
	return s
}
func (d *FunctionDecl) declNode() {}
