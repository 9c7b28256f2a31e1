package lp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func mustVar(t *testing.T, m *Model, lo, hi float64) Var {
	t.Helper()
	v, err := m.AddVariable(lo, hi)
	require.NoError(t, err)
	return v
}

func mustConstraint(t *testing.T, m *Model, e Expr, s Sense, rhs float64) Constraint {
	t.Helper()
	c, err := m.AddConstraint(e, s, rhs)
	require.NoError(t, err)
	return c
}

func TestSolveMinimize(t *testing.T) {
	m := New()
	x := mustVar(t, m, 0, math.Inf(1))
	y := mustVar(t, m, 0, 1)
	mustConstraint(t, m, Expr{}.Plus(x, 1).Plus(y, 1), GE, 2)
	require.NoError(t, m.SetObjective(Expr{}.Plus(x, 3).Plus(y, 1), Minimize))

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, status)

	xv, _ := m.Value(x)
	yv, _ := m.Value(y)
	obj, _ := m.ObjectiveValue()
	assert.InDelta(t, 1, xv, eps)
	assert.InDelta(t, 1, yv, eps)
	assert.InDelta(t, 4, obj, eps)
}

func TestSolveMaximize(t *testing.T) {
	m := New(WithTolerance(1e-9))
	x := mustVar(t, m, 0, 3)
	y := mustVar(t, m, 0, math.Inf(1))
	mustConstraint(t, m, Expr{{x, 1}, {y, 1}}, LE, 4)
	mustConstraint(t, m, Expr{{x, 1}, {y, 3}}, LE, 6)
	require.NoError(t, m.SetObjective(Expr{{x, 3}, {y, 2}}, Maximize))

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, status)

	obj, _ := m.ObjectiveValue()
	assert.InDelta(t, 11, obj, eps)
}

func TestSolveFreeAndUpperBoundedVariables(t *testing.T) {
	m := New()
	free := mustVar(t, m, math.Inf(-1), math.Inf(1))
	mustConstraint(t, m, Expr{{free, 1}}, GE, -5)
	capped := mustVar(t, m, math.Inf(-1), 3)
	require.NoError(t, m.SetObjective(Expr{{free, 1}, {capped, -1}}, Minimize))

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, status)

	fv, _ := m.Value(free)
	cv, _ := m.Value(capped)
	assert.InDelta(t, -5, fv, eps)
	assert.InDelta(t, 3, cv, eps)
}

func TestSolveFixedVariable(t *testing.T) {
	m := New()
	x := mustVar(t, m, 2, 2)
	y := mustVar(t, m, 0, math.Inf(1))
	mustConstraint(t, m, Expr{{x, 1}, {y, 1}}, EQ, 5)
	require.NoError(t, m.SetObjective(Expr{{y, 1}}, Minimize))

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, status)
	xv, _ := m.Value(x)
	yv, _ := m.Value(y)
	assert.InDelta(t, 2, xv, eps)
	assert.InDelta(t, 3, yv, eps)
}

func TestSolveInfeasible(t *testing.T) {
	m := New()
	x := mustVar(t, m, 0, 1)
	mustConstraint(t, m, Expr{{x, 1}}, GE, 2)
	require.NoError(t, m.SetObjective(Expr{{x, 1}}, Minimize))

	status, err := m.Solve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusInfeasible, status)
	assert.Equal(t, StatusInfeasible, m.Status())
	_, err = m.Value(x)
	assert.True(t, errors.Is(err, ErrNoSolution))
}

func TestSolveUnboundedUnusedColumn(t *testing.T) {
	m := New()
	x := mustVar(t, m, 0, math.Inf(1))
	require.NoError(t, m.SetObjective(Expr{{x, -1}}, Minimize))

	status, err := m.Solve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusUnbounded, status)
}

func TestSolveCanceledContext(t *testing.T) {
	m := New()
	mustVar(t, m, 0, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := m.Solve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusError, status)
}

func TestMutateAfterSolve(t *testing.T) {
	m := New()
	x := mustVar(t, m, 0, 10)
	c := mustConstraint(t, m, Expr{{x, 1}}, GE, 4)
	require.NoError(t, m.SetObjective(Expr{{x, 1}}, Minimize))

	_, err := m.Solve(context.Background())
	require.NoError(t, err)
	xv, _ := m.Value(x)
	assert.InDelta(t, 4, xv, eps)

	require.NoError(t, m.SetRightHandSide(c, 7))
	require.NoError(t, m.SetBounds(x, 1, 8))

	// the previous solution stays readable until the next solve
	xv, err = m.Value(x)
	require.NoError(t, err)
	assert.InDelta(t, 4, xv, eps)

	_, err = m.Solve(context.Background())
	require.NoError(t, err)
	xv, _ = m.Value(x)
	assert.InDelta(t, 7, xv, eps)

	rhs, err := m.RightHandSide(c)
	require.NoError(t, err)
	assert.Equal(t, 7.0, rhs)
	lo, hi, err := m.Bounds(x)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 8.0, hi)
}

func TestInvalidMutationsKeepState(t *testing.T) {
	m := New()
	x := mustVar(t, m, 0, 10)
	c := mustConstraint(t, m, Expr{{x, 1}}, LE, 4)

	assert.ErrorIs(t, m.SetBounds(x, 5, 1), ErrInvalidBounds)
	assert.ErrorIs(t, m.SetBounds(x, math.NaN(), 1), ErrInvalidBounds)
	assert.ErrorIs(t, m.SetBounds(Var(9), 0, 1), ErrUnknownVariable)
	assert.ErrorIs(t, m.SetRightHandSide(c, math.Inf(1)), ErrInvalidValue)
	assert.ErrorIs(t, m.SetRightHandSide(Constraint(3), 1), ErrUnknownConstraint)

	lo, hi, _ := m.Bounds(x)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 10.0, hi)
	rhs, _ := m.RightHandSide(c)
	assert.Equal(t, 4.0, rhs)

	_, err := m.AddVariable(math.Inf(1), math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = m.AddConstraint(Expr{{Var(7), 1}}, EQ, 0)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestAddConstraintMergesTerms(t *testing.T) {
	m := New()
	x := mustVar(t, m, 0, 1)
	y := mustVar(t, m, 0, 1)
	c := mustConstraint(t, m, Expr{{x, 1}, {y, 2}, {x, -3}}, EQ, 0)

	expr, sense, rhs, err := m.Row(c)
	require.NoError(t, err)
	assert.Equal(t, EQ, sense)
	assert.Equal(t, 0.0, rhs)
	assert.Equal(t, Expr{{x, -2}, {y, 2}}, expr)
	assert.Equal(t, 2, m.NumVariables())
	assert.Equal(t, 1, m.NumConstraints())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OPTIMAL", StatusOptimal.String())
	assert.Equal(t, "INFEASIBLE", StatusInfeasible.String())
	assert.Equal(t, "UNBOUNDED", StatusUnbounded.String())
	assert.Equal(t, "ERROR", StatusError.String())
	assert.Equal(t, "LE", LE.String())
}

// dispatchBlocks builds n independent copies of a small dispatch problem
// whose flow rows are duplicated, so every block carries a redundant
// equality and degenerate zero right-hand sides.
func dispatchBlocks(t *testing.T, m *Model, n int) (gens, hs []Var) {
	t.Helper()
	var obj Expr
	for k := 0; k < n; k++ {
		g := mustVar(t, m, 0, 5)
		h := mustVar(t, m, 0, math.Inf(1))
		f := mustVar(t, m, math.Inf(-1), math.Inf(1))
		theta := mustVar(t, m, -1, 1)
		demand := float64(4 + k%5)
		mustConstraint(t, m, Expr{{g, 1}, {h, 1}, {f, -1}}, EQ, demand)
		mustConstraint(t, m, Expr{{f, 1}, {theta, -2}}, EQ, 0)
		mustConstraint(t, m, Expr{{f, 1}, {theta, -2}}, EQ, 0)
		obj = obj.Plus(g, 1).Plus(h, 3)
		gens = append(gens, g)
		hs = append(hs, h)
	}
	require.NoError(t, m.SetObjective(obj, Minimize))
	return gens, hs
}

func TestSolveManyDegenerateBlocks(t *testing.T) {
	m := New()
	gens, hs := dispatchBlocks(t, m, 40)

	status, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, status)

	obj, _ := m.ObjectiveValue()
	assert.InDelta(t, 176, obj, eps)

	// need is demand-2 once the flow runs at its lower limit
	for k := range gens {
		need := float64(2 + k%5)
		g, _ := m.Value(gens[k])
		h, _ := m.Value(hs[k])
		assert.InDelta(t, math.Min(need, 5), g, eps, "block %d", k)
		assert.InDelta(t, math.Max(need-5, 0), h, eps, "block %d", k)
	}
}

func TestSolveInfeasibleBlockAmongFeasibleOnes(t *testing.T) {
	m := New()
	dispatchBlocks(t, m, 5)
	x := mustVar(t, m, 0, 1)
	y := mustVar(t, m, 0, 1)
	mustConstraint(t, m, Expr{{x, 1}, {y, 1}}, EQ, 3)

	status, err := m.Solve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusInfeasible, status)
}
