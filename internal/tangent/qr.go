package tangent

import (
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// householder holds the workspace for a thin QR of a d x k column-major
// matrix. Reflector j acts on rows j..d-1 and is stored in v[j*d:(j+1)*d].
type householder struct {
	d, k  int
	v     []float64
	vnorm []float64
}

func newHouseholder(d, k int) *householder {
	return &householder{d: d, k: k, v: make([]float64, d*k), vnorm: make([]float64, k)}
}

// factor overwrites a with R (upper part) and writes the orthonormal factor
// Q (d x k, column-major) into q and the signed diagonal of R into rdiag.
func (h *householder) factor(a, q, rdiag []float64) {
	d, k := h.d, h.k

	for j := 0; j < k; j++ {
		col := a[j*d : (j+1)*d]
		norm := 0.0
		for i := j; i < d; i++ {
			norm += col[i] * col[i]
		}
		norm = math.Sqrt(norm)

		v := h.v[j*d : (j+1)*d]
		if norm == 0 || math.IsNaN(norm) {
			h.vnorm[j] = 0
			rdiag[j] = norm
			continue
		}

		alpha := -math.Copysign(norm, col[j])
		for i := 0; i < j; i++ {
			v[i] = 0
		}
		v[j] = col[j] - alpha
		vn := v[j] * v[j]
		for i := j + 1; i < d; i++ {
			v[i] = col[i]
			vn += v[i] * v[i]
		}
		h.vnorm[j] = vn

		for c := j; c < k; c++ {
			reflect(v, vn, a[c*d:(c+1)*d], j)
		}
		rdiag[j] = a[j*d+j]
	}

	for i := range q {
		q[i] = 0
	}
	for c := 0; c < k; c++ {
		q[c*d+c] = 1
	}
	for j := k - 1; j >= 0; j-- {
		if h.vnorm[j] == 0 {
			continue
		}
		v := h.v[j*d : (j+1)*d]
		for c := 0; c < k; c++ {
			reflect(v, h.vnorm[j], q[c*d:(c+1)*d], j)
		}
	}
}

// reflect applies I - 2 v v^T / vn to x on rows from..len(x)-1.
func reflect(v []float64, vn float64, x []float64, from int) {
	dot := 0.0
	for i := from; i < len(x); i++ {
		dot += v[i] * x[i]
	}
	f := 2 * dot / vn
	for i := from; i < len(x); i++ {
		x[i] -= f * v[i]
	}
}

// QR factors a (d x k, k <= d) into an orthonormal Q (d x k) and the
// diagonal of the upper-triangular R. Diagonal entries keep their sign.
func QR(a *dynamo.Matrix) (*dynamo.Matrix, []float64) {
	d, k := a.Rows, a.Cols
	work := toColumns(a)
	q := make([]float64, d*k)
	rdiag := make([]float64, k)

	newHouseholder(d, k).factor(work, q, rdiag)
	return fromColumns(q, d, k), rdiag
}

func toColumns(m *dynamo.Matrix) []float64 {
	out := make([]float64, m.Rows*m.Cols)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out[j*m.Rows+i] = m.At(i, j)
		}
	}
	return out
}

func fromColumns(cols []float64, d, k int) *dynamo.Matrix {
	m := dynamo.NewMatrix(d, k)
	for j := 0; j < k; j++ {
		for i := 0; i < d; i++ {
			m.Set(i, j, cols[j*d+i])
		}
	}
	return m
}
