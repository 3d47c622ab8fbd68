package ast

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// GenIf is the conditional generate construct. The branch selected by the
// constant condition is cloned into Elaborated when the construct expands.
type GenIf struct {
	Cond hcl.Expression
	Then []Item
	Else []Item

	Elaborated []Item
	Expanded   bool
}

func (*GenIf) isNode() {}
func (*GenIf) isItem() {}
func (*GenIf) isGen()  {}

func (g *GenIf) ElaboratedItems() ([]Item, bool) { return g.Elaborated, g.Expanded }

func (g *GenIf) SetElaborated(items []Item) {
	g.Elaborated = items
	g.Expanded = true
}

// GenCaseArm is one arm of a case-select generate construct. A nil Matches
// slice marks the default arm.
type GenCaseArm struct {
	Matches []hcl.Expression
	Items   []Item
}

// GenCase is the case-select generate construct.
type GenCase struct {
	Selector hcl.Expression
	Arms     []GenCaseArm

	Elaborated []Item
	Expanded   bool
}

func (*GenCase) isNode() {}
func (*GenCase) isItem() {}
func (*GenCase) isGen()  {}

func (g *GenCase) ElaboratedItems() ([]Item, bool) { return g.Elaborated, g.Expanded }

func (g *GenCase) SetElaborated(items []Item) {
	g.Elaborated = items
	g.Expanded = true
}

// GenLoop is the loop generate construct: the body is replicated once per
// genvar value in [From, Below).
type GenLoop struct {
	Genvar string
	From   hcl.Expression
	Below  hcl.Expression
	Body   []Item

	Elaborated []Item
	Expanded   bool
}

func (*GenLoop) isNode() {}
func (*GenLoop) isItem() {}
func (*GenLoop) isGen()  {}

func (g *GenLoop) ElaboratedItems() ([]Item, bool) { return g.Elaborated, g.Expanded }

func (g *GenLoop) SetElaborated(items []Item) {
	g.Elaborated = items
	g.Expanded = true
}

// GenBlock is one unrolled iteration of a GenLoop. It scopes its items and
// binds the genvar to the iteration value; instances declared inside resolve
// under an indexed path segment, e.g. `top.genblk[2].u`.
type GenBlock struct {
	Name   string
	Index  int
	Genvar string
	Value  cty.Value
	Items  []Item
}

func (*GenBlock) isNode() {}
func (*GenBlock) isItem() {}
