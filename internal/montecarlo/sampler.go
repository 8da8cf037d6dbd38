package montecarlo

import "fmt"

// DefaultMaxAttempts bounds the accept/reject loop. The expected attempt
// count is (domain width * bound) / integral of the density, so for any
// reasonably tight bound this is never approached.
const DefaultMaxAttempts = 10000

// Sampler converts uniform draws from a Source into variates of arbitrary
// 1-D distributions.
type Sampler struct {
	src Source

	// MaxAttempts caps the accept/reject loop per variate.
	MaxAttempts int
}

// NewSampler returns a Sampler drawing from src.
func NewSampler(src Source) *Sampler {
	return &Sampler{src: src, MaxAttempts: DefaultMaxAttempts}
}

// Uniform returns one raw draw in [0, 1).
func (s *Sampler) Uniform() float64 { return s.src.Float64() }

// Sample draws one variate of d through its inverse CDF.
func (s *Sampler) Sample(d Invertible) (float64, error) {
	if !(d.Hi > d.Lo) {
		return 0, fmt.Errorf("%w: empty domain [%v, %v)", ErrInvalidDistribution, d.Lo, d.Hi)
	}
	if d.quantile == nil {
		return 0, fmt.Errorf("%w: nil quantile", ErrInvalidDistribution)
	}
	return d.quantile(s.src.Float64()), nil
}

// SampleGeneral draws one variate of d by accept/reject: candidates are
// uniform over the domain, accepted when a second uniform draw under the
// bound falls strictly below the density.
func (s *Sampler) SampleGeneral(d General) (float64, error) {
	if !(d.Hi > d.Lo) {
		return 0, fmt.Errorf("%w: empty domain [%v, %v)", ErrInvalidDistribution, d.Lo, d.Hi)
	}
	if d.Density == nil || d.Bound <= 0 {
		return 0, fmt.Errorf("%w: missing density or non-positive bound %v", ErrInvalidDistribution, d.Bound)
	}
	max := s.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	span := d.Hi - d.Lo
	for i := 0; i < max; i++ {
		x := d.Lo + span*s.src.Float64()
		y := d.Bound * s.src.Float64()
		p := d.Density(x)
		if p < 0 {
			return 0, fmt.Errorf("%w: density negative at x=%v", ErrInvalidDistribution, x)
		}
		if y < p {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w: no acceptance in %d attempts", ErrSamplingTimeout, max)
}
