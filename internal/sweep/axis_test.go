package sweep

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoslab/internal/maps"
)

var _ = Describe("Grid", func() {
	It("should index row-major with channels innermost", func() {
		g := newGrid(3, 2, 2)
		for i := range g.Data {
			g.Data[i] = float64(i)
		}

		Expect(g.At(1, 2, 0)).To(Equal(10.0))
		Expect(g.At(1, 2, 1)).To(Equal(11.0))
		Expect(g.Channel(1)).To(Equal([][]float64{{1, 3, 5}, {7, 9, 11}}))

		lo, hi, ok := g.Range(0)
		Expect(ok).To(BeTrue())
		Expect(lo).To(Equal(0.0))
		Expect(hi).To(Equal(10.0))
	})
})

var _ = Describe("Axis", func() {
	It("should resolve parameter names against the map", func() {
		i, err := LinearAxis("b", 0.2, 0.4, 3).index(maps.NewHenon())
		Expect(err).NotTo(HaveOccurred())
		Expect(i).To(Equal(1))
	})
})
