package montecarlo_test

import (
	"math"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat/distuv"

	"driftchamber/internal/montecarlo"
)

const nSamples = 10000

var _ = Describe("Sampler", func() {
	var s *montecarlo.Sampler

	BeforeEach(func() {
		s = montecarlo.NewSampler(montecarlo.NewSource(42))
	})

	Describe("inverse-CDF sampling", func() {
		It("reproduces the exponential CDF within KS tolerance", func() {
			rate := 1.5
			d := montecarlo.Exponential(rate)
			xs := make([]float64, nSamples)
			for i := range xs {
				x, err := s.Sample(d)
				Expect(err).NotTo(HaveOccurred())
				xs[i] = x
			}
			sort.Float64s(xs)

			// Kolmogorov-Smirnov distance against the theoretical CDF.
			ref := distuv.Exponential{Rate: rate}
			ks := 0.0
			for i, x := range xs {
				f := ref.CDF(x)
				lo := math.Abs(f - float64(i)/nSamples)
				hi := math.Abs(f - float64(i+1)/nSamples)
				ks = math.Max(ks, math.Max(lo, hi))
			}
			Expect(ks).To(BeNumerically("<", 0.02))
		})

		It("maps uniform draws onto the requested interval", func() {
			d := montecarlo.Uniform(-3, 7)
			for i := 0; i < 1000; i++ {
				x, err := s.Sample(d)
				Expect(err).NotTo(HaveOccurred())
				Expect(x).To(And(BeNumerically(">=", -3), BeNumerically("<", 7)))
			}
		})

		It("inverts the Moyal CDF at the median", func() {
			d := montecarlo.Moyal(0, 1)
			// erfc(exp(-x/2)/sqrt2) = 1/2 at x ~ 0.78760
			Expect(d.Quantile(0.5)).To(BeNumerically("~", 0.78760, 1e-4))
			Expect(d.Quantile(0.9)).To(BeNumerically(">", d.Quantile(0.1)))
		})

		It("rejects an empty domain", func() {
			_, err := s.Sample(montecarlo.Uniform(2, 2))
			Expect(err).To(MatchError(montecarlo.ErrInvalidDistribution))
		})
	})

	Describe("accept/reject sampling", func() {
		It("approximates the cos² zenith density", func() {
			d := montecarlo.CosSquared()
			const bins = 12
			hist := make([]float64, bins)
			width := (d.Hi - d.Lo) / bins
			sum := 0.0
			for i := 0; i < nSamples; i++ {
				x, err := s.SampleGeneral(d)
				Expect(err).NotTo(HaveOccurred())
				Expect(x).To(And(BeNumerically(">=", d.Lo), BeNumerically("<", d.Hi)))
				hist[int((x-d.Lo)/width)]++
				sum += x
			}
			// Symmetric about π where cos² peaks, near-empty at the
			// domain ends where the density vanishes.
			Expect(sum / nSamples).To(BeNumerically("~", math.Pi, 0.05))
			mid := bins / 2
			Expect(hist[0]).To(BeNumerically("<", hist[mid]/4))
			Expect(hist[bins-1]).To(BeNumerically("<", hist[mid]/4))
		})

		It("never accepts a candidate above the density", func() {
			// A density of exactly half the bound: acceptance requires the
			// ordinate draw to fall strictly under it.
			d := montecarlo.General{
				Lo: 0, Hi: 1, Bound: 1,
				Density: func(x float64) float64 { return 0.5 },
			}
			for i := 0; i < 1000; i++ {
				x, err := s.SampleGeneral(d)
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Density(x)).To(BeNumerically(">", 0))
			}
		})

		It("times out on an unsamplable density", func() {
			s.MaxAttempts = 50
			d := montecarlo.General{
				Lo: 0, Hi: 1, Bound: 1,
				Density: func(x float64) float64 { return 0 },
			}
			_, err := s.SampleGeneral(d)
			Expect(err).To(MatchError(montecarlo.ErrSamplingTimeout))
		})

		It("reports a negative density", func() {
			d := montecarlo.General{
				Lo: 0, Hi: 1, Bound: 1,
				Density: func(x float64) float64 { return -1 },
			}
			_, err := s.SampleGeneral(d)
			Expect(err).To(MatchError(montecarlo.ErrInvalidDistribution))
		})

		It("rejects a non-positive bound", func() {
			d := montecarlo.General{
				Lo: 0, Hi: 1, Bound: 0,
				Density: func(x float64) float64 { return 1 },
			}
			_, err := s.SampleGeneral(d)
			Expect(err).To(MatchError(montecarlo.ErrInvalidDistribution))
		})
	})
})
