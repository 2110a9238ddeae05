package sweep

import (
	"github.com/san-kum/chaoslab/internal/dynamo"
)

// Axis names one map parameter and the values it takes in a sweep.
type Axis struct {
	Param  string
	Values []float64
}

func NewAxis(param string, values []float64) Axis {
	return Axis{Param: param, Values: values}
}

// LinearAxis is NewAxis(param, Linspace(min, max, n)).
func LinearAxis(param string, min, max float64, n int) Axis {
	return Axis{Param: param, Values: Linspace(min, max, n)}
}

func (a Axis) Len() int { return len(a.Values) }

func (a Axis) index(m dynamo.Map) (int, error) {
	if len(a.Values) == 0 {
		return -1, dynamo.Invalidf("axis %q is empty", a.Param)
	}
	i := dynamo.ParamIndex(m, a.Param)
	if i < 0 {
		return -1, dynamo.Invalidf("map %s has no parameter %q (have %v)", m.Name(), a.Param, m.ParamNames())
	}
	return i, nil
}

// Linspace returns n evenly spaced values over [min, max], both ends
// included. n == 1 yields {min}; n <= 0 yields nil.
func Linspace(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}
