package analysis

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
)

var _ = Describe("Estimator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	estimate := func(cfg Config, m dynamo.Map, p dynamo.Params, x0 dynamo.State) ([]float64, error) {
		est, err := NewEstimator(cfg)
		Expect(err).NotTo(HaveOccurred())
		return est.Estimate(ctx, m, p, x0)
	}

	Context("logistic map", func() {
		It("should give a negative exponent at the stable fixed point r=2", func() {
			cfg := DefaultConfig()
			cfg.Transient = 5000

			exps, err := estimate(cfg, maps.NewLogistic(), dynamo.Params{2.0}, dynamo.State{0.45})

			Expect(err).NotTo(HaveOccurred())
			Expect(exps).To(HaveLen(1))
			Expect(exps[0]).To(BeNumerically("<", 0))
		})

		It("should give a negative exponent on the attracting fixed point r=2.8", func() {
			exps, err := estimate(DefaultConfig(), maps.NewLogistic(), dynamo.Params{2.8}, dynamo.State{0.3})

			Expect(err).NotTo(HaveOccurred())
			// |f'(x*)| = |2 - r| = 0.8
			Expect(exps[0]).To(BeNumerically("~", math.Log(0.8), 1e-6))
		})

		It("should approach ln 2 at r=4 with a tolerance that tightens with the horizon", func() {
			for _, n := range []int{1000, 100000} {
				cfg := DefaultConfig()
				cfg.Measure = n

				exps, err := estimate(cfg, maps.NewLogistic(), dynamo.Params{4.0}, dynamo.State{0.3})

				Expect(err).NotTo(HaveOccurred())
				Expect(exps[0]).To(BeNumerically("~", math.Ln2, 5/math.Sqrt(float64(n))))
			}
		})

		It("should report divergence at r=4.5", func() {
			exps, err := estimate(DefaultConfig(), maps.NewLogistic(), dynamo.Params{4.5}, dynamo.State{0.3})

			Expect(exps).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrDiverged)).To(BeTrue())
		})

		It("should report divergence from x0=0.5 at r=4.5", func() {
			exps, err := estimate(DefaultConfig(), maps.NewLogistic(), dynamo.Params{4.5}, dynamo.State{0.5})

			Expect(exps).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrDiverged)).To(BeTrue())
			var de *dynamo.DivergenceError
			Expect(errors.As(err, &de)).To(BeTrue())
		})

		It("should average over the surviving steps in lenient mode", func() {
			cfg := DefaultConfig()
			cfg.Transient = 0
			cfg.Measure = 1000

			_, strictErr := estimate(cfg, maps.NewLogistic(), dynamo.Params{4.5}, dynamo.State{0.3})
			Expect(errors.Is(strictErr, dynamo.ErrDiverged)).To(BeTrue())

			cfg.Mode = ModeLenient
			exps, err := estimate(cfg, maps.NewLogistic(), dynamo.Params{4.5}, dynamo.State{0.3})
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(exps[0]) || math.IsInf(exps[0], 0)).To(BeFalse())
		})
	})

	Context("Hénon map", func() {
		It("should be chaotic with exponents summing to ln|b|", func() {
			cfg := DefaultConfig()
			cfg.Measure = 10000
			cfg.Exponents = 2

			exps, err := estimate(cfg, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})

			Expect(err).NotTo(HaveOccurred())
			Expect(exps).To(HaveLen(2))
			Expect(exps[0]).To(BeNumerically(">", 0))
			Expect(exps[0]).To(BeNumerically("~", 0.419, 0.05))
			Expect(exps[0]).To(BeNumerically(">=", exps[1]))
			Expect(exps[0] + exps[1]).To(BeNumerically("~", math.Log(0.3), 1e-2))
		})

		It("should agree on the maximal exponent for k=1 and k=2", func() {
			cfg := DefaultConfig()
			cfg.Measure = 10000

			one, err := estimate(cfg, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})
			Expect(err).NotTo(HaveOccurred())

			cfg.Exponents = 2
			two, err := estimate(cfg, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})
			Expect(err).NotTo(HaveOccurred())

			Expect(one[0]).To(BeNumerically("~", two[0], 1e-9))
		})

		It("should keep the maximal exponent when b=0 collapses the second direction", func() {
			cfg := DefaultConfig()
			cfg.Measure = 10000
			p := dynamo.Params{1.4, 0}

			one, err := estimate(cfg, maps.NewHenon(), p, dynamo.State{0.1, 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(one[0], 0)).To(BeFalse())

			cfg.Exponents = 2
			two, err := estimate(cfg, maps.NewHenon(), p, dynamo.State{0.1, 0.1})
			Expect(err).NotTo(HaveOccurred())

			Expect(two).To(HaveLen(2))
			Expect(two[0]).To(BeNumerically("~", one[0], 1e-9))
			Expect(math.IsInf(two[1], -1)).To(BeTrue())
		})

		It("should not depend on the renormalization interval beyond rounding", func() {
			cfg := DefaultConfig()
			cfg.Measure = 4000
			cfg.Exponents = 2

			every, err := estimate(cfg, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})
			Expect(err).NotTo(HaveOccurred())

			cfg.RenormInterval = 5
			sparse, err := estimate(cfg, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})
			Expect(err).NotTo(HaveOccurred())

			Expect(sparse[0]).To(BeNumerically("~", every[0], 1e-9))
			Expect(sparse[1]).To(BeNumerically("~", every[1], 1e-9))
		})
	})

	It("should match the analytic spectrum of the cat map", func() {
		torus := maps.NewTorus()
		p := dynamo.Params{1.0}

		cfg := DefaultConfig()
		cfg.Exponents = 2
		exps, err := estimate(cfg, torus, p, dynamo.State{0.123, 0.654})
		Expect(err).NotTo(HaveOccurred())

		exact, err := LinearSpectrum(torus.Matrix(p))
		Expect(err).NotTo(HaveOccurred())

		golden := math.Log((3 + math.Sqrt(5)) / 2)
		Expect(exact[0]).To(BeNumerically("~", golden, 1e-12))
		// the frame needs a few steps to align with the eigenvectors
		Expect(exps[0]).To(BeNumerically("~", exact[0], 1e-3))
		Expect(exps[1]).To(BeNumerically("~", exact[1], 1e-3))
		Expect(exps[0] + exps[1]).To(BeNumerically("~", 0, 1e-9))
	})

	It("should average a rank-one linear map over the full horizon", func() {
		// A = [[0.5, 0.25], [0, 0]]: eigenvalues 0.5 and 0
		for _, interval := range []int{1, 4} {
			cfg := DefaultConfig()
			cfg.Transient = 0
			cfg.Measure = 400
			cfg.Exponents = 2
			cfg.RenormInterval = interval

			exps, err := estimate(cfg, maps.NewLinear(), dynamo.Params{0.5, 0.25, 0, 0}, dynamo.State{1, 1})

			Expect(err).NotTo(HaveOccurred())
			Expect(exps[0]).To(BeNumerically("~", math.Log(0.5), 1e-9))
			Expect(math.IsInf(exps[1], -1)).To(BeTrue())
		}
	})

	It("should report -Inf for every exponent when the leading direction collapses", func() {
		cfg := DefaultConfig()
		cfg.Transient = 0
		cfg.Measure = 10

		exps, err := estimate(cfg, maps.NewLogistic(), dynamo.Params{2.0}, dynamo.State{0.5})

		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(exps[0], -1)).To(BeTrue())
	})

	It("should return ErrUnsupported for a map without a Jacobian", func() {
		bare := &dynamo.Spec{Label: "bare", D: 1, F: func(x dynamo.State, _ dynamo.Params, out dynamo.State) { out[0] = x[0] / 2 }}

		_, err := estimate(DefaultConfig(), bare, nil, dynamo.State{1})
		Expect(errors.Is(err, dynamo.ErrUnsupported)).To(BeTrue())
	})

	It("should reject more exponents than dimensions", func() {
		cfg := DefaultConfig()
		cfg.Exponents = 3

		_, err := estimate(cfg, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})

	DescribeTable("invalid estimator configurations",
		func(mutate func(*Config)) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := NewEstimator(cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
		},
		Entry("empty measurement", func(c *Config) { c.Measure = 0 }),
		Entry("no exponents", func(c *Config) { c.Exponents = 0 }),
		Entry("negative transient", func(c *Config) { c.Transient = -1 }),
		Entry("negative threshold", func(c *Config) { c.Threshold = -1 }),
		Entry("interval beyond horizon", func(c *Config) { c.RenormInterval = c.Measure + 1 }),
	)

	It("should parse modes", func() {
		m, err := ParseMode("lenient")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(ModeLenient))
		Expect(m.String()).To(Equal("lenient"))

		_, err = ParseMode("sloppy")
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})

	It("should expose the maximal exponent directly", func() {
		lambda, err := MaxExponent(ctx, maps.NewLogistic(), dynamo.Params{2.8}, dynamo.State{0.3}, DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(lambda).To(BeNumerically("<", 0))
	})
})

var _ = Describe("Accumulator", func() {
	It("should average log growth over the given step count", func() {
		acc := NewAccumulator(2)
		acc.Add([]float64{math.E, 1})
		acc.Add([]float64{math.E, math.Exp(-2)})

		Expect(acc.Valid()).To(Equal(2))
		mean := acc.Mean(2)
		Expect(mean[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(mean[1]).To(BeNumerically("~", -1, 1e-12))

		acc.Reset()
		Expect(acc.Valid()).To(BeZero())
		Expect(acc.Sums()).To(Equal([]float64{0, 0}))
	})
})
