package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// UnitTolerance is the distance from |lambda| = 1 (and from 0) within which an
// eigenvalue counts as lying on the boundary.
const UnitTolerance = 1e-9

type FixedPointKind int

const (
	StableNode FixedPointKind = iota
	UnstableNode
	Saddle
	StableFocus
	UnstableFocus
	// Center has a complex pair on the unit circle.
	Center
	// NonHyperbolic has a real eigenvalue at +1 or -1.
	NonHyperbolic
)

func (k FixedPointKind) String() string {
	switch k {
	case StableNode:
		return "stable node"
	case UnstableNode:
		return "unstable node"
	case Saddle:
		return "saddle"
	case StableFocus:
		return "stable focus"
	case UnstableFocus:
		return "unstable focus"
	case Center:
		return "center"
	case NonHyperbolic:
		return "non-hyperbolic"
	}
	return fmt.Sprintf("FixedPointKind(%d)", int(k))
}

// Linearization describes a planar fixed point through the eigenvalues of
// its Jacobian A. Real eigenvalues are ordered Lambda1 >= Lambda2.
type Linearization struct {
	Trace, Det   float64
	Discriminant float64
	Lambda1      complex128
	Lambda2      complex128
	Kind         FixedPointKind
	// Reflecting is set when a real eigenvalue is negative, so orbits
	// alternate sides along that eigendirection.
	Reflecting bool
	// Zone names the region of the (trace, det) plane by the interval each
	// eigenvalue falls in, e.g. "λ1 > 1, -1 < λ2 < 0".
	Zone string
}

// Stable reports an attracting fixed point.
func (l Linearization) Stable() bool {
	return l.Kind == StableNode || l.Kind == StableFocus
}

// Classify places (trace, det) in the stability zones of the plane, with
// Delta = tr^2 - 4 det separating real pairs from complex ones.
func Classify(tr, det float64) Linearization {
	l := Linearization{Trace: tr, Det: det, Discriminant: tr*tr - 4*det}

	if l.Discriminant < 0 {
		half, im := tr/2, math.Sqrt(-l.Discriminant)/2
		l.Lambda1, l.Lambda2 = complex(half, im), complex(half, -im)
		r := math.Sqrt(det)
		switch {
		case math.Abs(r-1) <= UnitTolerance:
			l.Kind = Center
			l.Zone = "complex, |λ| = 1"
		case r < 1:
			l.Kind = StableFocus
			l.Zone = "complex, |λ| < 1"
		default:
			l.Kind = UnstableFocus
			l.Zone = "complex, |λ| > 1"
		}
		return l
	}

	s := math.Sqrt(l.Discriminant)
	l1, l2 := (tr+s)/2, (tr-s)/2
	l.Lambda1, l.Lambda2 = complex(l1, 0), complex(l2, 0)
	l.Reflecting = l2 < -UnitTolerance

	a1, a2 := math.Abs(l1), math.Abs(l2)
	switch {
	case onUnit(l1) || onUnit(l2):
		l.Kind = NonHyperbolic
	case a1 < 1 && a2 < 1:
		l.Kind = StableNode
	case a1 > 1 && a2 > 1:
		l.Kind = UnstableNode
	default:
		l.Kind = Saddle
	}

	i1, i2 := interval(l1), interval(l2)
	if i1 == i2 {
		l.Zone = "λ1,2 " + i1
	} else {
		l.Zone = fmt.Sprintf("λ1 %s, λ2 %s", i1, i2)
	}
	return l
}

func onUnit(v float64) bool {
	return math.Abs(math.Abs(v)-1) <= UnitTolerance
}

// interval names where v sits relative to -1, 0 and 1.
func interval(v float64) string {
	switch {
	case math.Abs(v+1) <= UnitTolerance:
		return "= -1"
	case math.Abs(v-1) <= UnitTolerance:
		return "= 1"
	case math.Abs(v) <= UnitTolerance:
		return "= 0"
	case v < -1:
		return "< -1"
	case v < 0:
		return "in (-1, 0)"
	case v < 1:
		return "in (0, 1)"
	}
	return "> 1"
}

// ClassifyMatrix classifies the linear map x -> A x at the origin.
func ClassifyMatrix(a *dynamo.Matrix) (Linearization, error) {
	if a == nil || a.Rows != 2 || a.Cols != 2 {
		return Linearization{}, dynamo.Invalidf("fixed point classification needs a 2x2 matrix")
	}
	for _, v := range a.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Linearization{}, dynamo.Invalidf("matrix has non-finite entry %g", v)
		}
	}
	return Classify(a.At(0, 0)+a.At(1, 1), a.Det2()), nil
}

// ClassifyFixedPoint linearizes a planar map at x, which must satisfy
// F(x) = x to within tol relative to 1 + |x|.
func ClassifyFixedPoint(m dynamo.Map, p dynamo.Params, x dynamo.State, tol float64) (Linearization, error) {
	jac, ok := dynamo.JacobianOf(m)
	if !ok {
		return Linearization{}, fmt.Errorf("%w: %s", dynamo.ErrUnsupported, m.Name())
	}
	if m.Dim() != 2 || len(x) != 2 {
		return Linearization{}, dynamo.Invalidf("fixed point classification needs a planar map and point, got dim %d and %d components", m.Dim(), len(x))
	}

	fx := make(dynamo.State, 2)
	m.Apply(x, p, fx)
	for i := range x {
		if math.Abs(fx[i]-x[i]) > tol*(1+math.Abs(x[i])) {
			return Linearization{}, dynamo.Invalidf("%v is not a fixed point of %s: F(x) = %v", x, m.Name(), fx)
		}
	}

	j := dynamo.NewMatrix(2, 2)
	jac(x, p, j)
	return ClassifyMatrix(j)
}
