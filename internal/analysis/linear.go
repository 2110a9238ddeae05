package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// LinearSpectrum returns the exact Lyapunov spectrum of the linear map
// x -> A x (or of a toral automorphism with matrix A): log|eigenvalue|,
// sorted descending. A zero eigenvalue yields -Inf.
func LinearSpectrum(a *dynamo.Matrix) ([]float64, error) {
	if a == nil || a.Rows == 0 || a.Rows != a.Cols {
		return nil, dynamo.Invalidf("linear spectrum needs a non-empty square matrix")
	}
	for _, v := range a.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, dynamo.Invalidf("matrix has non-finite entry %g", v)
		}
	}

	dense := mat.NewDense(a.Rows, a.Cols, append([]float64(nil), a.Data...))
	var eig mat.Eigen
	if ok := eig.Factorize(dense, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigen decomposition of %dx%d matrix did not converge", a.Rows, a.Cols)
	}

	vals := eig.Values(nil)
	exps := make([]float64, len(vals))
	for i, v := range vals {
		exps[i] = math.Log(cmplx.Abs(v))
	}
	return sortDescending(exps), nil
}
