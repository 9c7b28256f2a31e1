package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"
)

// column maps a model variable onto standard-form columns:
//
//	x = offset + sign*y[pos] - y[neg]
//
// with y >= 0. neg is -1 unless the variable is free.
type column struct {
	offset float64
	sign   float64
	pos    int
	neg    int
}

// standardForm is min c'y s.t. A y = b, y >= 0, kept sparse until the
// empty rows and columns are dropped.
type standardForm struct {
	cols   []column
	cost   []float64
	rows   []map[int]float64
	rhs    []float64
	offset float64
}

func (sf *standardForm) newColumn() int {
	sf.cost = append(sf.cost, 0)
	return len(sf.cost) - 1
}

func (sf *standardForm) addRow(coefs map[int]float64, rhs float64) {
	sf.rows = append(sf.rows, coefs)
	sf.rhs = append(sf.rhs, rhs)
}

func (m *Model) standardForm() *standardForm {
	sf := &standardForm{cols: make([]column, len(m.lower))}

	for v := range m.lower {
		lo, hi := m.lower[v], m.upper[v]
		switch {
		case !math.IsInf(lo, -1):
			c := column{offset: lo, sign: 1, pos: sf.newColumn(), neg: -1}
			sf.cols[v] = c
			if !math.IsInf(hi, 1) {
				s := sf.newColumn()
				sf.addRow(map[int]float64{c.pos: 1, s: 1}, hi-lo)
			}
		case !math.IsInf(hi, 1):
			sf.cols[v] = column{offset: hi, sign: -1, pos: sf.newColumn(), neg: -1}
		default:
			sf.cols[v] = column{sign: 1, pos: sf.newColumn(), neg: sf.newColumn()}
		}
	}

	for _, r := range m.rows {
		coefs := make(map[int]float64, len(r.terms)+1)
		rhs := r.rhs
		for _, t := range r.terms {
			if t.Coef == 0 {
				continue
			}
			c := sf.cols[t.Var]
			rhs -= t.Coef * c.offset
			coefs[c.pos] += t.Coef * c.sign
			if c.neg >= 0 {
				coefs[c.neg] -= t.Coef
			}
		}
		switch r.sense {
		case LE:
			coefs[sf.newColumn()] = 1
		case GE:
			coefs[sf.newColumn()] = -1
		}
		sf.addRow(coefs, rhs)
	}

	sign := 1.0
	if m.direction == Maximize {
		sign = -1
	}
	for _, t := range m.objective {
		c := sf.cols[t.Var]
		sf.offset += t.Coef * c.offset
		sf.cost[c.pos] += sign * t.Coef * c.sign
		if c.neg >= 0 {
			sf.cost[c.neg] -= sign * t.Coef
		}
	}
	return sf
}

// Solve runs the simplex method on the current model. Bounds, right-hand
// sides and the objective may all have changed since the previous call.
func (m *Model) Solve(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return m.fail(StatusError, err)
	}

	sf := m.standardForm()
	y, status, err := m.simplex(ctx, sf)
	if status != StatusOptimal {
		return m.fail(status, err)
	}

	values := make([]float64, len(m.lower))
	for v, c := range sf.cols {
		x := c.offset + c.sign*y[c.pos]
		if c.neg >= 0 {
			x -= y[c.neg]
		}
		values[v] = x
	}
	obj := 0.0
	for _, t := range m.objective {
		obj += t.Coef * values[t.Var]
	}

	m.values = values
	m.objValue = obj
	m.hasValues = true
	m.status = StatusOptimal
	m.solveErr = nil
	return StatusOptimal, nil
}

func (m *Model) fail(status Status, err error) (Status, error) {
	m.status = status
	m.solveErr = err
	return status, err
}

// simplex drops empty rows and columns, splits what remains into blocks
// that share no column and hands each block to gonum. It returns one value
// per standard-form column.
func (m *Model) simplex(ctx context.Context, sf *standardForm) ([]float64, Status, error) {
	nCols := len(sf.cost)
	y := make([]float64, nCols)

	used := make([]bool, nCols)
	var keepRows []int
	for i, coefs := range sf.rows {
		nonzero := false
		for j, a := range coefs {
			if a != 0 {
				used[j] = true
				nonzero = true
			}
		}
		if nonzero {
			keepRows = append(keepRows, i)
			continue
		}
		if math.Abs(sf.rhs[i]) > m.tol {
			return nil, StatusInfeasible, fmt.Errorf("lp: empty row %d requires %v = 0", i, sf.rhs[i])
		}
	}

	// A column no row touches sits at zero unless its cost pulls it to +Inf.
	for j := 0; j < nCols; j++ {
		if !used[j] && sf.cost[j] < 0 {
			return nil, StatusUnbounded, gonumlp.ErrUnbounded
		}
	}

	for _, blk := range sf.blocks(keepRows, used) {
		if err := ctx.Err(); err != nil {
			return nil, StatusError, err
		}
		x, status, err := m.solveBlock(sf, blk)
		if status != StatusOptimal {
			return nil, status, err
		}
		for k, j := range blk.cols {
			y[j] = x[k]
		}
	}
	return y, StatusOptimal, nil
}

// block is a set of standard-form rows together with every column they
// touch. No column belongs to two blocks.
type block struct {
	rows []int
	cols []int
}

// blocks groups rows that are linked through shared columns.
func (sf *standardForm) blocks(rows []int, used []bool) []block {
	parent := make([]int, len(sf.cost))
	for j := range parent {
		parent[j] = j
	}
	find := func(j int) int {
		for parent[j] != j {
			parent[j] = parent[parent[j]]
			j = parent[j]
		}
		return j
	}

	first := make([]int, len(rows))
	for k, r := range rows {
		first[k] = -1
		for j, a := range sf.rows[r] {
			if a == 0 {
				continue
			}
			if first[k] < 0 {
				first[k] = j
				continue
			}
			if ra, rb := find(first[k]), find(j); ra != rb {
				parent[rb] = ra
			}
		}
	}

	index := make(map[int]int)
	var out []block
	for k, r := range rows {
		root := find(first[k])
		b, ok := index[root]
		if !ok {
			b = len(out)
			index[root] = b
			out = append(out, block{})
		}
		out[b].rows = append(out[b].rows, r)
	}
	for j, u := range used {
		if u {
			b := index[find(j)]
			out[b].cols = append(out[b].cols, j)
		}
	}
	return out
}

// solveBlock solves one block starting from an explicit basis. Each row
// starts on a column that appears only in that row with a positive
// coefficient, or on an artificial column when it has none. A phase one
// pass over the artificials decides feasibility, then the real costs are
// solved with the artificials priced at bigM.
func (m *Model) solveBlock(sf *standardForm, blk block) ([]float64, Status, error) {
	nRows, nCols := len(blk.rows), len(blk.cols)
	colIndex := make(map[int]int, nCols)
	for k, j := range blk.cols {
		colIndex[j] = k
	}

	count := make([]int, nCols)
	flips := make([]float64, nRows)
	b := make([]float64, nRows)
	for i, r := range blk.rows {
		flips[i] = 1
		if sf.rhs[r] < 0 {
			flips[i] = -1
		}
		b[i] = flips[i] * sf.rhs[r]
		for j, a := range sf.rows[r] {
			if a != 0 {
				count[colIndex[j]]++
			}
		}
	}

	basis := make([]int, nRows)
	var artificial []int
	for i, r := range blk.rows {
		basis[i] = -1
		for j, a := range sf.rows[r] {
			k := colIndex[j]
			if a != 0 && count[k] == 1 && flips[i]*a > 0 && (basis[i] < 0 || k < basis[i]) {
				basis[i] = k
			}
		}
		if basis[i] < 0 {
			basis[i] = nCols + len(artificial)
			artificial = append(artificial, i)
		}
	}

	n := nCols + len(artificial)
	A := mat.NewDense(nRows, n, nil)
	for i, r := range blk.rows {
		for j, a := range sf.rows[r] {
			if a != 0 {
				A.Set(i, colIndex[j], flips[i]*a)
			}
		}
	}
	for k, i := range artificial {
		A.Set(i, nCols+k, 1)
	}

	c := make([]float64, n)
	maxCost := 1.0
	for k, j := range blk.cols {
		c[k] = sf.cost[j]
		maxCost = math.Max(maxCost, math.Abs(c[k]))
	}
	if len(artificial) == 0 {
		x, err := m.runSimplex(c, A, b, basis)
		if err != nil {
			return nil, statusOf(err), err
		}
		return x, StatusOptimal, nil
	}

	maxRHS := 0.0
	for _, v := range b {
		maxRHS = math.Max(maxRHS, v)
	}
	feasTol := 1e-6 * (1 + maxRHS)
	residual := func(x []float64) float64 {
		sum := 0.0
		for k := nCols; k < n; k++ {
			sum += x[k]
		}
		return sum
	}

	phaseOne := make([]float64, n)
	for k := nCols; k < n; k++ {
		phaseOne[k] = 1
	}
	x, err := m.runSimplex(phaseOne, A, b, basis)
	if err != nil {
		return nil, StatusError, err
	}
	if r := residual(x); r > feasTol {
		return nil, StatusInfeasible, fmt.Errorf("%w: residual %g", gonumlp.ErrInfeasible, r)
	}

	var lastErr error
	bigM := 1e4 * maxCost
	for attempt := 0; attempt < 3; attempt++ {
		for k := nCols; k < n; k++ {
			c[k] = bigM
		}
		x, err := m.runSimplex(c, A, b, basis)
		switch {
		case err == nil && residual(x) <= feasTol:
			return x[:nCols], StatusOptimal, nil
		case err == nil:
			lastErr = fmt.Errorf("lp: artificial columns still carry %g", residual(x))
		case errors.Is(err, gonumlp.ErrUnbounded):
			lastErr = err
		default:
			return nil, StatusError, err
		}
		bigM *= 1e3
	}
	return nil, statusOf(lastErr), lastErr
}

// runSimplex calls gonum with a starting basis. gonum panics on a basis it
// cannot use, so the panic comes back as an error.
func (m *Model) runSimplex(c []float64, A mat.Matrix, b []float64, basis []int) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, err = nil, fmt.Errorf("lp: simplex: %v", r)
		}
	}()
	_, x, err = gonumlp.Simplex(c, A, b, m.tol, basis)
	return x, err
}

func statusOf(err error) Status {
	switch {
	case errors.Is(err, gonumlp.ErrInfeasible):
		return StatusInfeasible
	case errors.Is(err, gonumlp.ErrUnbounded):
		return StatusUnbounded
	default:
		return StatusError
	}
}
