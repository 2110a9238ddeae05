package sweep

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
)

func sameBits(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

var _ = Describe("Linspace", func() {
	It("should include both ends", func() {
		v := Linspace(0, 4, 5)
		Expect(v).To(Equal([]float64{0, 1, 2, 3, 4}))
	})

	It("should handle degenerate counts", func() {
		Expect(Linspace(1, 2, 0)).To(BeNil())
		Expect(Linspace(1, 2, 1)).To(Equal([]float64{1}))
	})
})

var _ = Describe("Driver", func() {
	var (
		ctx context.Context
		cfg analysis.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = analysis.DefaultConfig()
		cfg.Transient = 200
		cfg.Measure = 1000
	})

	Context("Sweep1D", func() {
		It("should keep axis order and mark exactly the divergent points", func() {
			logistic := maps.NewLogistic()
			axis := LinearAxis("r", 3.5, 4.6, 12)
			x0 := dynamo.State{0.3}

			series, err := NewDriver(WithWorkers(4)).Sweep1D(ctx, logistic, nil, axis, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(series.Len()).To(Equal(12))
			Expect(series.Params).To(Equal(axis.Values))

			est, _ := analysis.NewEstimator(cfg)
			diverged := 0
			for i, r := range axis.Values {
				single, err := est.Estimate(ctx, logistic, dynamo.Params{r}, x0)
				if errors.Is(err, dynamo.ErrDiverged) {
					diverged++
					Expect(series.Valid(i)).To(BeFalse(), "r=%v", r)
					continue
				}
				Expect(err).NotTo(HaveOccurred())
				Expect(sameBits(series.Values[i], single)).To(BeTrue(), "r=%v", r)
			}
			Expect(diverged).To(BeNumerically(">", 0))
			Expect(series.Diverged()).To(Equal(diverged))
		})

		It("should be bit-identical across runs and worker counts", func() {
			axis := LinearAxis("a", 0.1, 1.4, 40)
			x0 := dynamo.State{0, 0}
			cfg.Exponents = 2
			cfg.Threshold = 100

			var runs []*Series
			for _, w := range []int{1, 3, 8, 8} {
				s, err := NewDriver(WithWorkers(w)).Sweep1D(ctx, maps.NewHenon(), dynamo.Params{1.4, 0.3}, axis, x0, cfg)
				Expect(err).NotTo(HaveOccurred())
				runs = append(runs, s)
			}

			for _, s := range runs[1:] {
				for i := range s.Values {
					Expect(sameBits(s.Values[i], runs[0].Values[i])).To(BeTrue(), "point %d", i)
				}
			}
		})

		It("should report progress once per point", func() {
			var calls, last, wrongTotal atomic.Int64
			progress := ProgressFunc(func(done, total int) {
				calls.Add(1)
				if done == total {
					last.Store(int64(done))
				}
				if total != 10 {
					wrongTotal.Add(1)
				}
			})

			_, err := NewDriver(WithWorkers(3), WithProgress(progress)).
				Sweep1D(ctx, maps.NewLogistic(), nil, LinearAxis("r", 2.5, 3.9, 10), dynamo.State{0.3}, cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(calls.Load()).To(Equal(int64(10)))
			Expect(last.Load()).To(Equal(int64(10)))
			Expect(wrongTotal.Load()).To(BeZero())
		})
	})

	Context("Sweep2D", func() {
		It("should lay rows along the second axis", func() {
			henon := maps.NewHenon()
			a := LinearAxis("a", 1.0, 1.4, 5)
			b := LinearAxis("b", 0.2, 0.4, 4)
			x0 := dynamo.State{0, 0}
			cfg.Threshold = 100

			grid, err := NewDriver(WithWorkers(4)).Sweep2D(ctx, henon, nil, a, b, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(grid.Rows).To(Equal(4))
			Expect(grid.Cols).To(Equal(5))
			Expect(grid.Data).To(HaveLen(20))

			est, _ := analysis.NewEstimator(cfg)
			for row, bv := range b.Values {
				for col, av := range a.Values {
					single, err := est.Estimate(ctx, henon, dynamo.Params{av, bv}, x0)
					got := grid.At(row, col, 0)
					if errors.Is(err, dynamo.ErrDiverged) {
						Expect(math.IsNaN(got)).To(BeTrue())
						continue
					}
					Expect(err).NotTo(HaveOccurred())
					Expect(math.Float64bits(got)).To(Equal(math.Float64bits(single[0])), "a=%v b=%v", av, bv)
				}
			}
		})

		It("should reject two axes over the same parameter", func() {
			_, err := NewDriver().Sweep2D(ctx, maps.NewHenon(), nil,
				LinearAxis("a", 1, 1.4, 3), LinearAxis("a", 1, 1.4, 3), dynamo.State{0, 0}, cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
		})
	})

	Context("configuration errors", func() {
		It("should abort before evaluating any point", func() {
			var calls atomic.Int64
			d := NewDriver(WithProgress(ProgressFunc(func(int, int) { calls.Add(1) })))
			bare := &dynamo.Spec{
				Label: "bare", D: 1, Names: []string{"c"}, Defaults: dynamo.Params{0.5},
				F: func(x dynamo.State, p dynamo.Params, out dynamo.State) { out[0] = p[0] * x[0] },
			}

			_, err := d.Sweep1D(ctx, bare, nil, LinearAxis("c", 0, 1, 5), dynamo.State{1}, cfg)
			Expect(errors.Is(err, dynamo.ErrUnsupported)).To(BeTrue())

			_, err = d.Sweep1D(ctx, maps.NewLogistic(), nil, LinearAxis("q", 0, 1, 5), dynamo.State{0.3}, cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())

			_, err = d.Sweep1D(ctx, maps.NewLogistic(), nil, NewAxis("r", nil), dynamo.State{0.3}, cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())

			_, err = d.Sweep1D(ctx, maps.NewLogistic(), dynamo.Params{1, 2}, LinearAxis("r", 0, 1, 5), dynamo.State{0.3}, cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())

			Expect(calls.Load()).To(BeZero())
		})

		It("should return the context error when cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := NewDriver(WithWorkers(2)).Sweep1D(cctx, maps.NewLogistic(), nil, LinearAxis("r", 3, 4, 20), dynamo.State{0.3}, cfg)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Context("Evaluate1D", func() {
		It("should run arbitrary point functions", func() {
			linear := maps.NewLinear()
			s, err := NewDriver().Evaluate1D(ctx, linear, dynamo.Params{2, 0, 0, 1}, LinearAxis("m22", 0.5, 4, 8), 2,
				func(_ context.Context, p dynamo.Params) ([]float64, error) {
					return analysis.LinearSpectrum(linear.Matrix(p))
				})

			Expect(err).NotTo(HaveOccurred())
			Expect(s.Values[0][0]).To(BeNumerically("~", math.Ln2, 1e-12))
			Expect(s.Values[7][0]).To(BeNumerically("~", math.Log(4), 1e-12))
		})

		It("should reject results of the wrong width", func() {
			_, err := NewDriver().Evaluate1D(ctx, maps.NewLogistic(), nil, LinearAxis("r", 0, 1, 3), 2,
				func(context.Context, dynamo.Params) ([]float64, error) { return []float64{1}, nil })
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
		})
	})

	Context("Bifurcation", func() {
		It("should sample attractors and flag escaping orbits", func() {
			attr := analysis.DefaultAttractorConfig()
			attr.Samples = 64
			attr.Resolution = 1e-6

			b, err := NewDriver(WithWorkers(4)).Bifurcation(ctx, maps.NewLogistic(), nil,
				NewAxis("r", []float64{2.8, 3.2, 3.5, 3.9, 4.5}), dynamo.State{0.3}, attr)

			Expect(err).NotTo(HaveOccurred())
			Expect(b.Branches).To(HaveLen(5))
			Expect(b.Branches[0].Values).To(HaveLen(1))
			Expect(b.Branches[1].Values).To(HaveLen(2))
			Expect(b.Branches[2].Values).To(HaveLen(4))
			Expect(len(b.Branches[3].Values)).To(BeNumerically(">", 4))
			Expect(b.Branches[4].Valid).To(BeFalse())
			Expect(b.Branches[4].Values).To(BeEmpty())
			Expect(b.Branches[4].Param).To(Equal(4.5))
		})
	})
})
