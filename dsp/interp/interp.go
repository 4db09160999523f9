package interp

import "math"

// Mode selects an interpolation method.
type Mode int

const (
	// Linear uses 2-point linear interpolation.
	Linear Mode = iota
	// Hermite uses 4-point cubic Hermite interpolation.
	Hermite
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return "unknown"
	}
}

// Linear2 interpolates between x0 (t=0) and x1 (t=1).
// It is written as a weighted sum so that t=0 returns x0 exactly.
func Linear2(t, x0, x1 float64) float64 {
	return x0*(1-t) + x1*t
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// At evaluates samples at fractional position pos using mode m.
// Every index touched is clamped to [0, len(samples)-1], so positions at
// or past the last sample never read out of bounds. samples must not be
// empty.
func At(m Mode, samples []float32, pos float64) float64 {
	last := len(samples) - 1

	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)

	lo = clampIndex(lo, last)
	hi = clampIndex(hi, last)

	x0 := float64(samples[lo])
	if frac == 0 || hi == lo {
		return x0
	}
	x1 := float64(samples[hi])

	if m == Hermite {
		xm1 := float64(samples[clampIndex(lo-1, last)])
		x2 := float64(samples[clampIndex(hi+1, last)])
		return Hermite4(frac, xm1, x0, x1, x2)
	}

	return Linear2(frac, x0, x1)
}

func clampIndex(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
