package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// DefaultNameExpr names pages by position.
const DefaultNameExpr = `"page-%d.html" % index`

// NameEvaluator computes a page's output file name from a Starlark
// expression such as
//
//	slug(page["name"]) + ".html"
type NameEvaluator struct {
	expr string
	pool *ThreadPool
}

// NewNameEvaluator checks expr for syntax errors and returns an evaluator.
// An empty expr selects DefaultNameExpr.
func NewNameEvaluator(expr string, poolSize int) (*NameEvaluator, error) {
	if expr == "" {
		expr = DefaultNameExpr
	}
	if _, err := syntax.ParseExpr("output_name", expr, 0); err != nil { //nolint:staticcheck // SA1019: FileOptions migration pending
		return nil, core.NewCollaboratorError(core.KindTemplate, "parse output_name", err)
	}
	return &NameEvaluator{expr: expr, pool: NewThreadPool(poolSize)}, nil
}

// Expr returns the expression being evaluated.
func (e *NameEvaluator) Expr() string { return e.expr }

// Name evaluates the expression for one composite.
func (e *NameEvaluator) Name(index int, page core.Record) (string, error) {
	op := fmt.Sprintf("output_name for page %d", index)

	globals, err := Predeclared(page, index)
	if err != nil {
		return "", core.NewCollaboratorError(core.KindTemplate, op, err)
	}

	thread := e.pool.Get(fmt.Sprintf("page-%d", index))
	defer e.pool.Put(thread)

	v, err := starlark.Eval(thread, "output_name", e.expr, globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return "", core.NewCollaboratorError(core.KindTemplate, op, err)
	}

	name, ok := starlark.AsString(v)
	if !ok {
		return "", core.NewCollaboratorError(core.KindTemplate, op,
			fmt.Errorf("expression must produce a string, got %s", v.Type()))
	}
	if name == "" {
		return "", core.NewCollaboratorError(core.KindTemplate, op, fmt.Errorf("expression produced an empty name"))
	}
	return name, nil
}
