// Package lp is a small handle-based linear program model. Variables and
// constraints are registered once and keep their handles for the life of the
// model; bounds and right-hand sides stay mutable after a solve. Solving is
// delegated to gonum's simplex implementation.
package lp

import (
	"errors"
	"fmt"
	"math"
)

// Var is a handle to a registered variable.
type Var int

// Constraint is a handle to a registered linear constraint.
type Constraint int

type Sense int

const (
	EQ Sense = iota
	LE
	GE
)

func (s Sense) String() string {
	switch s {
	case EQ:
		return "EQ"
	case LE:
		return "LE"
	case GE:
		return "GE"
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

type Direction int

const (
	Minimize Direction = iota
	Maximize
)

type Status int

const (
	StatusUnsolved Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnsolved:
		return "UNSOLVED"
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	default:
		return "ERROR"
	}
}

// Term is coef * variable.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression without a constant part.
type Expr []Term

// Plus returns e extended by coef*v.
func (e Expr) Plus(v Var, coef float64) Expr {
	return append(e, Term{Var: v, Coef: coef})
}

var (
	ErrUnknownVariable   = errors.New("lp: unknown variable")
	ErrUnknownConstraint = errors.New("lp: unknown constraint")
	ErrInvalidBounds     = errors.New("lp: invalid bounds")
	ErrInvalidValue      = errors.New("lp: invalid value")
	ErrNoSolution        = errors.New("lp: no optimal solution available")
)

// DefaultTolerance is the simplex tolerance used unless WithTolerance is given.
const DefaultTolerance = 1e-7

type row struct {
	terms Expr
	sense Sense
	rhs   float64
}

// Model holds variables, constraints and an objective.
// It is not safe for concurrent use.
type Model struct {
	tol float64

	lower []float64
	upper []float64
	rows  []row

	objective Expr
	direction Direction

	status    Status
	solveErr  error
	values    []float64
	objValue  float64
	hasValues bool
}

type Option func(*Model)

// WithTolerance sets the simplex tolerance.
func WithTolerance(tol float64) Option {
	return func(m *Model) {
		if tol > 0 {
			m.tol = tol
		}
	}
}

func New(opts ...Option) *Model {
	m := &Model{tol: DefaultTolerance}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func checkBounds(lower, upper float64) error {
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidBounds)
	}
	if math.IsInf(lower, 1) || math.IsInf(upper, -1) {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, lower, upper)
	}
	if lower > upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrInvalidBounds, lower, upper)
	}
	return nil
}

// AddVariable registers a variable with bounds [lower, upper]. Either side
// may be infinite.
func (m *Model) AddVariable(lower, upper float64) (Var, error) {
	if err := checkBounds(lower, upper); err != nil {
		return -1, err
	}
	m.lower = append(m.lower, lower)
	m.upper = append(m.upper, upper)
	return Var(len(m.lower) - 1), nil
}

// AddConstraint registers expr (sense) rhs. Repeated variables in expr are
// merged.
func (m *Model) AddConstraint(expr Expr, sense Sense, rhs float64) (Constraint, error) {
	if sense != EQ && sense != LE && sense != GE {
		return -1, fmt.Errorf("lp: unknown sense %v", sense)
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return -1, fmt.Errorf("%w: right-hand side %v", ErrInvalidValue, rhs)
	}
	terms, err := m.merge(expr)
	if err != nil {
		return -1, err
	}
	m.rows = append(m.rows, row{terms: terms, sense: sense, rhs: rhs})
	return Constraint(len(m.rows) - 1), nil
}

// SetObjective replaces the objective.
func (m *Model) SetObjective(expr Expr, dir Direction) error {
	if dir != Minimize && dir != Maximize {
		return fmt.Errorf("lp: unknown direction %v", dir)
	}
	terms, err := m.merge(expr)
	if err != nil {
		return err
	}
	m.objective = terms
	m.direction = dir
	return nil
}

func (m *Model) merge(expr Expr) (Expr, error) {
	pos := make(map[Var]int, len(expr))
	out := make(Expr, 0, len(expr))
	for _, t := range expr {
		if !m.validVar(t.Var) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownVariable, t.Var)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return nil, fmt.Errorf("%w: coefficient %v", ErrInvalidValue, t.Coef)
		}
		if i, ok := pos[t.Var]; ok {
			out[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}
	return out, nil
}

func (m *Model) validVar(v Var) bool { return v >= 0 && int(v) < len(m.lower) }

func (m *Model) validConstraint(c Constraint) bool { return c >= 0 && int(c) < len(m.rows) }

// SetBounds changes the bounds of a registered variable. Invalid bounds are
// rejected and the previous bounds stay in place.
func (m *Model) SetBounds(v Var, lower, upper float64) error {
	if !m.validVar(v) {
		return fmt.Errorf("%w: %d", ErrUnknownVariable, v)
	}
	if err := checkBounds(lower, upper); err != nil {
		return err
	}
	m.lower[v] = lower
	m.upper[v] = upper
	return nil
}

func (m *Model) Bounds(v Var) (lower, upper float64, err error) {
	if !m.validVar(v) {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownVariable, v)
	}
	return m.lower[v], m.upper[v], nil
}

// SetRightHandSide changes the right-hand side of a registered constraint.
func (m *Model) SetRightHandSide(c Constraint, rhs float64) error {
	if !m.validConstraint(c) {
		return fmt.Errorf("%w: %d", ErrUnknownConstraint, c)
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return fmt.Errorf("%w: right-hand side %v", ErrInvalidValue, rhs)
	}
	m.rows[c].rhs = rhs
	return nil
}

func (m *Model) RightHandSide(c Constraint) (float64, error) {
	if !m.validConstraint(c) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownConstraint, c)
	}
	return m.rows[c].rhs, nil
}

// Row returns a copy of the left-hand side, sense and right-hand side of c.
func (m *Model) Row(c Constraint) (Expr, Sense, float64, error) {
	if !m.validConstraint(c) {
		return nil, 0, 0, fmt.Errorf("%w: %d", ErrUnknownConstraint, c)
	}
	r := m.rows[c]
	return append(Expr(nil), r.terms...), r.sense, r.rhs, nil
}

// Objective returns a copy of the objective expression and its direction.
func (m *Model) Objective() (Expr, Direction) {
	return append(Expr(nil), m.objective...), m.direction
}

func (m *Model) NumVariables() int   { return len(m.lower) }
func (m *Model) NumConstraints() int { return len(m.rows) }

// Status is the outcome of the most recent Solve.
func (m *Model) Status() Status { return m.status }

// Value is the value of v in the most recent optimal solution. Values stay
// readable after bounds or right-hand sides change, until the next
// successful solve replaces them.
func (m *Model) Value(v Var) (float64, error) {
	if !m.hasValues {
		return 0, ErrNoSolution
	}
	if v < 0 || int(v) >= len(m.values) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVariable, v)
	}
	return m.values[v], nil
}

// ObjectiveValue is the objective of the most recent optimal solution.
func (m *Model) ObjectiveValue() (float64, error) {
	if !m.hasValues {
		return 0, ErrNoSolution
	}
	return m.objValue, nil
}

// LastError is the error reported by the most recent failed Solve.
func (m *Model) LastError() error { return m.solveErr }
