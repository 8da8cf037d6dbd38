package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Invertible is a 1-D distribution with a closed-form inverse CDF.
// Sampling one variate costs exactly one uniform draw.
type Invertible struct {
	Lo, Hi   float64
	quantile func(u float64) float64
}

// Quantile maps u in [0, 1) through the distribution's inverse CDF.
func (d Invertible) Quantile(u float64) float64 { return d.quantile(u) }

// General is a 1-D distribution known only through its density. Bound must
// dominate Density everywhere on [Lo, Hi); the tighter the bound, the fewer
// rejected candidates.
type General struct {
	Lo, Hi  float64
	Density func(x float64) float64
	Bound   float64
}

// Uniform is the flat distribution on [lo, hi).
func Uniform(lo, hi float64) Invertible {
	return Invertible{
		Lo: lo,
		Hi: hi,
		quantile: func(u float64) float64 {
			return lo + (hi-lo)*u
		},
	}
}

// Exponential has density rate*exp(-rate*x) on [0, inf).
func Exponential(rate float64) Invertible {
	e := distuv.Exponential{Rate: rate}
	return Invertible{Lo: 0, Hi: math.Inf(1), quantile: e.Quantile}
}

// LogNormal has parameters mu and sigma of the underlying normal.
func LogNormal(mu, sigma float64) Invertible {
	ln := distuv.LogNormal{Mu: mu, Sigma: sigma}
	return Invertible{Lo: 0, Hi: math.Inf(1), quantile: ln.Quantile}
}

// Moyal is the Moyal approximation to the Landau energy-loss distribution,
// with location loc and scale. The standard CDF is erfc(exp(-x/2)/sqrt(2)),
// which inverts to x = -2*ln(sqrt(2)*erfcinv(u)).
func Moyal(loc, scale float64) Invertible {
	return Invertible{
		Lo: math.Inf(-1),
		Hi: math.Inf(1),
		quantile: func(u float64) float64 {
			return loc - 2*scale*math.Log(math.Sqrt2*math.Erfcinv(u))
		},
	}
}

// CosSquared is the zenith-angle density cos²(θ) on [π/2, 3π/2), normalised
// up to a constant. The density's maximum on the domain is 1, so the
// rejection bound is exact.
func CosSquared() General {
	return General{
		Lo:    math.Pi / 2,
		Hi:    3 * math.Pi / 2,
		Bound: 1,
		Density: func(x float64) float64 {
			c := math.Cos(x)
			return c * c
		},
	}
}
