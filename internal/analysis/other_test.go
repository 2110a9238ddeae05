package analysis

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
	"github.com/san-kum/chaoslab/internal/orbit"
)

var _ = Describe("Attractor", func() {
	ctx := context.Background()

	DescribeTable("periodic windows of the logistic map",
		func(r float64, period int) {
			cfg := DefaultAttractorConfig()
			cfg.Resolution = 1e-6

			values, err := Attractor(ctx, maps.NewLogistic(), dynamo.Params{r}, dynamo.State{0.3}, cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(HaveLen(period))
		},
		Entry("fixed point", 2.8, 1),
		Entry("period two", 3.2, 2),
		Entry("period four", 3.5, 4),
	)

	It("should keep every sample without a resolution", func() {
		cfg := DefaultAttractorConfig()
		cfg.Samples = 50

		values, err := Attractor(ctx, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1}, cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(HaveLen(50))
	})

	It("should report an escaping orbit", func() {
		_, err := Attractor(ctx, maps.NewLogistic(), dynamo.Params{4.5}, dynamo.State{0.3}, DefaultAttractorConfig())
		Expect(errors.Is(err, dynamo.ErrDiverged)).To(BeTrue())
	})

	It("should reject an out of range component", func() {
		cfg := DefaultAttractorConfig()
		cfg.Component = 2

		_, err := Attractor(ctx, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1}, cfg)
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})

	It("should keep first occurrences in order", func() {
		Expect(Distinct([]float64{0.5, 0.8, 0.5000001, 0.8, 0.2}, 1e-3)).To(Equal([]float64{0.5, 0.8, 0.2}))
	})
})

var _ = Describe("PhasePortrait", func() {
	ctx := context.Background()

	It("should project a 2-D orbit", func() {
		pp, err := PhasePortrait(ctx, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1},
			orbit.Config{Transient: 100, Measure: 500}, 0, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(pp.Points).To(HaveLen(500))

		minX, maxX, minY, maxY := pp.Bounds()
		Expect(minX).To(BeNumerically(">", -1.5))
		Expect(maxX).To(BeNumerically("<", 1.5))
		Expect(minY).To(BeNumerically(">", -0.5))
		Expect(maxY).To(BeNumerically("<", 0.5))
	})

	It("should build the return map of a 1-D map", func() {
		pp, err := PhasePortrait(ctx, maps.NewLogistic(), dynamo.Params{3.9}, dynamo.State{0.2},
			orbit.Config{Transient: 10, Measure: 100}, 0, 0)

		Expect(err).NotTo(HaveOccurred())
		for _, pt := range pp.Points {
			Expect(pt.Y).To(BeNumerically("~", 3.9*pt.X*(1-pt.X), 1e-12))
		}
	})

	It("should reject out of range projections", func() {
		_, err := PhasePortrait(ctx, maps.NewLogistic(), dynamo.Params{3.9}, dynamo.State{0.2},
			orbit.Config{Measure: 10}, 0, 1)
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})
})

var _ = Describe("Separation", func() {
	ctx := context.Background()

	It("should recover the expansion rate of a diagonal linear map", func() {
		cfg := DefaultSeparationConfig()
		cfg.Steps = 20

		dist, err := Separation(ctx, maps.NewLinear(), dynamo.Params{2, 0, 0, 0.5}, dynamo.State{0.1, 1}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(dist).To(HaveLen(20))

		rate, err := GrowthRate(dist)
		Expect(err).NotTo(HaveOccurred())
		Expect(rate).To(BeNumerically("~", math.Ln2, 1e-6))
	})

	It("should estimate the cat map exponent on the torus", func() {
		cfg := SeparationConfig{Delta: 1e-12, Steps: 20, Period: 1}

		dist, err := Separation(ctx, maps.NewTorus(), dynamo.Params{1.0}, dynamo.State{0.123, 0.654}, cfg)
		Expect(err).NotTo(HaveOccurred())

		rate, err := GrowthRate(dist)
		Expect(err).NotTo(HaveOccurred())
		Expect(rate).To(BeNumerically("~", math.Log((3+math.Sqrt(5))/2), 0.05))
	})

	It("should reject a zero perturbation", func() {
		_, err := Separation(ctx, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1}, SeparationConfig{Steps: 5})
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})

	It("should need two positive distances to fit a rate", func() {
		_, err := GrowthRate([]float64{0, 1e-3})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LinearSpectrum", func() {
	It("should return sorted log moduli of the eigenvalues", func() {
		a := dynamo.NewMatrix(2, 2)
		copy(a.Data, []float64{0.5, 0, 0, 3})

		exps, err := LinearSpectrum(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(exps[0]).To(BeNumerically("~", math.Log(3), 1e-12))
		Expect(exps[1]).To(BeNumerically("~", math.Log(0.5), 1e-12))
	})

	It("should use the modulus of complex eigenvalues", func() {
		// rotation by 90 degrees scaled by 2
		a := dynamo.NewMatrix(2, 2)
		copy(a.Data, []float64{0, -2, 2, 0})

		exps, err := LinearSpectrum(a)
		Expect(err).NotTo(HaveOccurred())
		Expect(exps[0]).To(BeNumerically("~", math.Ln2, 1e-12))
		Expect(exps[1]).To(BeNumerically("~", math.Ln2, 1e-12))
	})

	It("should reject non-square input", func() {
		_, err := LinearSpectrum(dynamo.NewMatrix(2, 3))
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})
})

var _ = Describe("PowerSpectrum", func() {
	ctx := context.Background()

	samples := func(r float64, n int) []float64 {
		cfg := DefaultAttractorConfig()
		cfg.Samples = n
		values, err := Attractor(ctx, maps.NewLogistic(), dynamo.Params{r}, dynamo.State{0.3}, cfg)
		Expect(err).NotTo(HaveOccurred())
		return values
	}

	It("should put a period-two orbit at the Nyquist bin", func() {
		ps := PowerSpectrum(samples(3.2, 200))

		Expect(ps).To(HaveLen(101))
		Expect(DominantPeriod(ps, 200)).To(Equal(2.0))
		Expect(SpectralFlatness(ps)).To(BeNumerically("<", 1e-3))
	})

	It("should find period four", func() {
		ps := PowerSpectrum(samples(3.5, 256))
		Expect(DominantPeriod(ps, 256)).To(BeElementOf(2.0, 4.0))
		Expect(ps[64]).To(BeNumerically(">", 1e-4))
	})

	It("should report no period for a fixed point", func() {
		ps := PowerSpectrum(samples(2.8, 128))
		Expect(DominantPeriod(ps, 128)).To(BeZero())
	})

	It("should be broadband for the chaotic logistic map", func() {
		ps := PowerSpectrum(samples(4, 256))
		Expect(SpectralFlatness(ps)).To(BeNumerically(">", 0.1))
	})

	It("should handle empty input", func() {
		Expect(PowerSpectrum(nil)).To(BeNil())
		Expect(SpectralFlatness(nil)).To(BeZero())
	})
})
