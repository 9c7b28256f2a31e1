package market

import (
	"context"

	"stochastic-dispatch/internal/lp"
)

// Solver is the linear program capability the registries build against.
// Handles returned by AddVariable and AddConstraint must stay valid for the
// life of the solver, and the mutators must be legal after a solve.
// *lp.Model implements it.
type Solver interface {
	AddVariable(lower, upper float64) (lp.Var, error)
	AddConstraint(expr lp.Expr, sense lp.Sense, rhs float64) (lp.Constraint, error)
	SetObjective(expr lp.Expr, dir lp.Direction) error

	SetBounds(v lp.Var, lower, upper float64) error
	SetRightHandSide(c lp.Constraint, rhs float64) error
	Bounds(v lp.Var) (lower, upper float64, err error)
	RightHandSide(c lp.Constraint) (float64, error)

	Solve(ctx context.Context) (lp.Status, error)
	Value(v lp.Var) (float64, error)
	ObjectiveValue() (float64, error)
}

var _ Solver = (*lp.Model)(nil)
