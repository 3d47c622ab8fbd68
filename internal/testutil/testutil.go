// Package testutil holds helpers shared by the package tests: expression
// parsing from source snippets and builders for common AST shapes.
package testutil

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"

	"github.com/vk/hdlelab/internal/ast"
)

// Expr parses src as a single HCL expression and fails the test on any
// parse diagnostic.
func Expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "parse %q: %s", src, diags.Error())
	return expr
}

// Template builds a module template with the given items and no ports or
// attributes.
func Template(name string, items ...ast.Item) *ast.ModuleDecl {
	return &ast.ModuleDecl{
		Name:  name,
		Attrs: ast.NewAttributes(),
		Items: items,
	}
}

// Inst builds an instantiation of module with no bindings.
func Inst(module, name string) *ast.ModuleInst {
	return &ast.ModuleInst{
		Attrs:  ast.NewAttributes(),
		Module: module,
		Name:   name,
	}
}

// Param builds a parameter declaration initialized from src.
func Param(t *testing.T, name, src string) *ast.ParamDecl {
	t.Helper()
	return &ast.ParamDecl{Name: name, InitExpr: Expr(t, src)}
}

// Localparam builds a localparam declaration initialized from src.
func Localparam(t *testing.T, name, src string) *ast.LocalparamDecl {
	t.Helper()
	return &ast.LocalparamDecl{Name: name, InitExpr: Expr(t, src)}
}
