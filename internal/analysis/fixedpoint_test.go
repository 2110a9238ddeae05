package analysis

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
)

var _ = Describe("Classify", func() {
	DescribeTable("zones of the trace-determinant plane",
		func(tr, det float64, kind FixedPointKind, zone string) {
			l := Classify(tr, det)

			Expect(l.Kind).To(Equal(kind))
			Expect(l.Zone).To(Equal(zone))
		},
		// eigenvalues 0.5 and 0.25
		Entry("contracting pair", 0.75, 0.125, StableNode, "λ1,2 in (0, 1)"),
		// 3 and 2
		Entry("expanding pair", 5.0, 6.0, UnstableNode, "λ1,2 > 1"),
		// 2 and -0.5
		Entry("saddle with reflection", 1.5, -1.0, Saddle, "λ1 > 1, λ2 in (-1, 0)"),
		// 0.5 and -2
		Entry("saddle flipping outward", -1.5, -1.0, Saddle, "λ1 in (0, 1), λ2 < -1"),
		// -1.5 and -3
		Entry("both below -1", -4.5, 4.5, UnstableNode, "λ1,2 < -1"),
		Entry("complex inside the circle", 0.0, 0.5, StableFocus, "complex, |λ| < 1"),
		Entry("complex outside the circle", 0.0, 2.0, UnstableFocus, "complex, |λ| > 1"),
		Entry("complex on the circle", 1.0, 1.0, Center, "complex, |λ| = 1"),
		// 1 and 0.5: the fold line tr - det - 1 = 0
		Entry("eigenvalue one", 1.5, 0.5, NonHyperbolic, "λ1 = 1, λ2 in (0, 1)"),
		// 0.5 and -1: the flip line tr + det + 1 = 0
		Entry("eigenvalue minus one", -0.5, -0.5, NonHyperbolic, "λ1 in (0, 1), λ2 = -1"),
	)

	It("should order real eigenvalues and flag negative ones", func() {
		l := Classify(1.5, -1.0)

		Expect(real(l.Lambda1)).To(BeNumerically("~", 2, 1e-12))
		Expect(real(l.Lambda2)).To(BeNumerically("~", -0.5, 1e-12))
		Expect(l.Reflecting).To(BeTrue())
		Expect(Classify(0.75, 0.125).Reflecting).To(BeFalse())
	})

	It("should give a complex pair with modulus sqrt(det)", func() {
		l := Classify(0.0, 0.25)

		Expect(l.Discriminant).To(BeNumerically("<", 0))
		Expect(real(l.Lambda1)).To(BeZero())
		Expect(math.Abs(imag(l.Lambda1))).To(BeNumerically("~", 0.5, 1e-12))
		Expect(l.Lambda2).To(Equal(complex(real(l.Lambda1), -imag(l.Lambda1))))
		Expect(l.Stable()).To(BeTrue())
	})

	It("should classify a linear map through its matrix", func() {
		// eigenvectors (1, 2) for 2 and (1, -1) for 0.5
		a := dynamo.NewMatrix(2, 2)
		copy(a.Data, []float64{1, 0.5, 1, 1.5})

		l, err := ClassifyMatrix(a)

		Expect(err).NotTo(HaveOccurred())
		Expect(l.Kind).To(Equal(Saddle))
		Expect(real(l.Lambda1)).To(BeNumerically("~", 2, 1e-12))
		Expect(real(l.Lambda2)).To(BeNumerically("~", 0.5, 1e-12))

		_, err = ClassifyMatrix(dynamo.NewMatrix(3, 3))
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})
})

var _ = Describe("ClassifyFixedPoint", func() {
	DescribeTable("normal forms on either side of their bifurcation",
		func(m dynamo.Map, p dynamo.Params, x dynamo.State, kind FixedPointKind) {
			l, err := ClassifyFixedPoint(m, p, x, 1e-12)

			Expect(err).NotTo(HaveOccurred())
			Expect(l.Kind).To(Equal(kind))
		},
		Entry("flip before", maps.NewFlip(), dynamo.Params{-0.2}, dynamo.State{0, 0}, StableNode),
		Entry("flip at", maps.NewFlip(), dynamo.Params{0}, dynamo.State{0, 0}, NonHyperbolic),
		Entry("flip after", maps.NewFlip(), dynamo.Params{0.2}, dynamo.State{0, 0}, Saddle),
		Entry("pitchfork origin after", maps.NewPitchfork(), dynamo.Params{1.5}, dynamo.State{0, 0}, Saddle),
		Entry("pitchfork branch", maps.NewPitchfork(), dynamo.Params{1.5}, dynamo.State{math.Sqrt(0.5), 0}, StableNode),
		Entry("transcritical origin before", maps.NewTranscritical(), dynamo.Params{0.5}, dynamo.State{0, 0}, StableNode),
		Entry("transcritical origin after", maps.NewTranscritical(), dynamo.Params{1.5}, dynamo.State{0, 0}, Saddle),
		Entry("saddle-node upper", maps.NewSaddleNode(), dynamo.Params{-0.04}, dynamo.State{-0.1, -0.05}, StableFocus),
		Entry("saddle-node lower", maps.NewSaddleNode(), dynamo.Params{-0.04}, dynamo.State{-0.4, -0.2}, Saddle),
		Entry("hopf before", maps.NewHopf(), dynamo.Params{-0.1, math.Pi / 4}, dynamo.State{0, 0}, StableFocus),
		Entry("hopf at", maps.NewHopf(), dynamo.Params{0, math.Pi / 4}, dynamo.State{0, 0}, Center),
		Entry("hopf after", maps.NewHopf(), dynamo.Params{0.1, math.Pi / 4}, dynamo.State{0, 0}, UnstableFocus),
	)

	It("should flag the reflection of the flip normal form", func() {
		l, err := ClassifyFixedPoint(maps.NewFlip(), dynamo.Params{0.2}, dynamo.State{0, 0}, 1e-12)

		Expect(err).NotTo(HaveOccurred())
		Expect(l.Reflecting).To(BeTrue())
		Expect(l.Zone).To(Equal("λ1 in (0, 1), λ2 < -1"))
	})

	It("should reject a point that is not fixed", func() {
		_, err := ClassifyFixedPoint(maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1}, 1e-9)

		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})

	It("should reject maps outside the plane", func() {
		_, err := ClassifyFixedPoint(maps.NewLogistic(), dynamo.Params{2.8}, dynamo.State{1 - 1/2.8}, 1e-9)

		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
	})
})
