package orbit

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/maps"
)

var _ = Describe("Iterator", func() {
	var (
		ctx      context.Context
		logistic dynamo.Map
	)

	BeforeEach(func() {
		ctx = context.Background()
		logistic = maps.NewLogistic()
	})

	It("should apply the map exactly transient+measure times", func() {
		calls := 0
		counting := &dynamo.Spec{
			Label: "counter", D: 1,
			F: func(x dynamo.State, _ dynamo.Params, out dynamo.State) {
				calls++
				out[0] = x[0] + 1
			},
		}

		out, err := New(counting, Config{Transient: 7, Measure: 5}).Run(ctx, nil, dynamo.State{0}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(12))
		Expect(out.Measured).To(Equal(5))
		Expect(out.Final[0]).To(Equal(12.0))
	})

	It("should hand the pre-step state to the callback", func() {
		counter := &dynamo.Spec{
			Label: "counter", D: 1,
			F: func(x dynamo.State, _ dynamo.Params, out dynamo.State) { out[0] = x[0] + 1 },
		}

		var seen []float64
		_, err := New(counter, Config{Transient: 3, Measure: 4}).Run(ctx, nil, dynamo.State{0},
			func(n int, x dynamo.State) error {
				seen = append(seen, x[0])
				return nil
			})

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]float64{3, 4, 5, 6}))
	})

	It("should not modify the initial state", func() {
		x0 := dynamo.State{0.2}
		_, err := New(logistic, Config{Transient: 10, Measure: 10}).Run(ctx, dynamo.Params{3.9}, x0, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(x0[0]).To(Equal(0.2))
	})

	It("should accept an empty measurement horizon", func() {
		called := false
		out, err := New(logistic, Config{Transient: 100, Measure: 0}).Run(ctx, dynamo.Params{2.0}, dynamo.State{0.3},
			func(int, dynamo.State) error {
				called = true
				return nil
			})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Measured).To(BeZero())
		Expect(called).To(BeFalse())
	})

	It("should report divergence for the escaping logistic map", func() {
		out, err := New(logistic, Config{Transient: 0, Measure: 1000, Threshold: 1e6}).
			Run(ctx, dynamo.Params{4.5}, dynamo.State{0.5}, nil)

		Expect(out).To(BeNil())
		Expect(errors.Is(err, dynamo.ErrDiverged)).To(BeTrue())

		var de *dynamo.DivergenceError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Phase).To(Equal(dynamo.PhaseMeasure))
	})

	It("should report divergence during the transient", func() {
		_, err := New(logistic, Config{Transient: 1000, Measure: 10}).
			Run(ctx, dynamo.Params{4.5}, dynamo.State{0.5}, nil)

		var de *dynamo.DivergenceError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Phase).To(Equal(dynamo.PhaseTransient))
	})

	It("should record the tail when asked", func() {
		out, err := New(maps.NewHenon(), Config{Transient: 100, Measure: 50, Record: true}).
			Run(ctx, dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Tail).To(HaveLen(50))
		Expect(out.Tail[49]).To(Equal(out.Final))
	})

	It("should convert callback divergence into a DivergenceError", func() {
		_, err := New(logistic, Config{Measure: 10}).Run(ctx, dynamo.Params{3.0}, dynamo.State{0.2},
			func(n int, _ dynamo.State) error {
				if n == 4 {
					return dynamo.ErrDiverged
				}
				return nil
			})

		var de *dynamo.DivergenceError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Step).To(Equal(4))
	})

	It("should pass other callback errors through untouched", func() {
		boom := errors.New("boom")
		_, err := New(logistic, Config{Measure: 10}).Run(ctx, dynamo.Params{3.0}, dynamo.State{0.2},
			func(int, dynamo.State) error { return boom })

		Expect(err).To(MatchError(boom))
	})

	It("should stop on a cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New(logistic, Config{Transient: 10, Measure: 10}).Run(cctx, dynamo.Params{3.0}, dynamo.State{0.2}, nil)
		Expect(err).To(MatchError(context.Canceled))
	})

	DescribeTable("invalid configurations",
		func(cfg Config, x0 dynamo.State) {
			_, err := New(logistic, cfg).Run(ctx, dynamo.Params{3.0}, x0, nil)
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
		},
		Entry("negative transient", Config{Transient: -1, Measure: 1}, dynamo.State{0.1}),
		Entry("negative measure", Config{Measure: -5}, dynamo.State{0.1}),
		Entry("negative threshold", Config{Measure: 5, Threshold: -1}, dynamo.State{0.1}),
		Entry("wrong state length", Config{Measure: 5}, dynamo.State{0.1, 0.2}),
	)
})
