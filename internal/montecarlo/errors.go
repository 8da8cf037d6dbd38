package montecarlo

import "errors"

// Domain errors for variate sampling.
var (
	// ErrInvalidDistribution indicates an empty domain, a non-positive
	// rejection bound, or a density that evaluated negative.
	ErrInvalidDistribution = errors.New("montecarlo: invalid distribution")

	// ErrSamplingTimeout indicates accept/reject exhausted its attempt
	// budget without accepting a candidate.
	ErrSamplingTimeout = errors.New("montecarlo: sampling timeout (distribution unsamplable)")
)
