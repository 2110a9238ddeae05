package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// CopyFrom overwrites s with src; lengths must match.
func (s State) CopyFrom(src State) {
	copy(s, src)
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MaxAbs returns max_i |s_i|, or NaN if any component is NaN.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Params is a positional parameter vector, e.g. (a, b) for Hénon.
type Params []float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	copy(c, p)
	return c
}

// With returns a copy of p with index i set to v.
func (p Params) With(i int, v float64) Params {
	c := p.Clone()
	c[i] = v
	return c
}

// Matrix is a dense row-major matrix.
type Matrix struct {
	Rows, Cols int
	Data       []float64
}

func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func (m *Matrix) At(r, c int) float64 { return m.Data[r*m.Cols+c] }

func (m *Matrix) Set(r, c int, v float64) { m.Data[r*m.Cols+c] = v }

// Zero clears every entry.
func (m *Matrix) Zero() {
	for i := range m.Data {
		m.Data[i] = 0
	}
}

// MulVec writes m·v into out. out must not alias v.
func (m *Matrix) MulVec(v, out []float64) {
	for i := 0; i < m.Rows; i++ {
		sum := 0.0
		row := m.Data[i*m.Cols : (i+1)*m.Cols]
		for j, a := range row {
			sum += a * v[j]
		}
		out[i] = sum
	}
}

// Mul returns m·other.
func (m *Matrix) Mul(other *Matrix) *Matrix {
	if m.Cols != other.Rows {
		panic(fmt.Sprintf("dynamo: matrix mismatch %dx%d * %dx%d", m.Rows, m.Cols, other.Rows, other.Cols))
	}
	res := NewMatrix(m.Rows, other.Cols)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < other.Cols; j++ {
			sum := 0.0
			for k := 0; k < m.Cols; k++ {
				sum += m.At(i, k) * other.At(k, j)
			}
			res.Set(i, j, sum)
		}
	}
	return res
}

// Det2 returns the determinant of a 2x2 matrix.
func (m *Matrix) Det2() float64 {
	return m.At(0, 0)*m.At(1, 1) - m.At(0, 1)*m.At(1, 0)
}

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.Rows, m.Cols)
	copy(c.Data, m.Data)
	return c
}

// Map is a discrete-time system x_{n+1} = F(x_n, p).
type Map interface {
	Name() string
	Dim() int
	ParamNames() []string
	DefaultParams() Params
	// Apply writes F(x, p) into out. out may alias x.
	Apply(x State, p Params, out State)
}

// Differentiable is a Map with a closed-form Jacobian dF/dx.
type Differentiable interface {
	Map
	// Jacobian writes dF/dx evaluated at (x, p) into out (Dim x Dim).
	Jacobian(x State, p Params, out *Matrix)
}

// JacobianFunc evaluates dF/dx at (x, p) into out.
type JacobianFunc func(x State, p Params, out *Matrix)

// JacobianOf returns the Jacobian of m, if it has one.
func JacobianOf(m Map) (JacobianFunc, bool) {
	if s, ok := m.(*Spec); ok {
		return s.J, s.J != nil
	}
	if d, ok := m.(Differentiable); ok {
		return d.Jacobian, true
	}
	return nil, false
}

// ParamIndex returns the position of a named parameter, or -1.
func ParamIndex(m Map, name string) int {
	for i, n := range m.ParamNames() {
		if n == name {
			return i
		}
	}
	return -1
}

// Spec adapts caller-supplied closures to Map. J may be nil.
type Spec struct {
	Label    string
	D        int
	Names    []string
	Defaults Params
	F        func(x State, p Params, out State)
	J        JacobianFunc
}

func (s *Spec) Name() string          { return s.Label }
func (s *Spec) Dim() int              { return s.D }
func (s *Spec) ParamNames() []string  { return s.Names }
func (s *Spec) DefaultParams() Params { return s.Defaults.Clone() }

func (s *Spec) Apply(x State, p Params, out State) { s.F(x, p, out) }
