// Package workload generates rider arrivals for a loop line.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSpec selects the inter-arrival process of one stop.
type ArrivalSpec struct {
	Process string   `yaml:"process"` // poisson, gamma, weibull or constant
	CV      *float64 `yaml:"cv,omitempty"`
}

// Validate rejects unknown processes and non-positive CVs.
func (s ArrivalSpec) Validate() error {
	switch s.Process {
	case "poisson", "constant":
	case "gamma", "weibull":
		if s.CV != nil && (*s.CV <= 0 || math.IsNaN(*s.CV) || math.IsInf(*s.CV, 0)) {
			return fmt.Errorf("%s cv must be positive, got %f", s.Process, *s.CV)
		}
	default:
		return fmt.Errorf("unknown arrival process %q", s.Process)
	}
	return nil
}

// ArrivalSampler generates inter-arrival gaps in simulated minutes.
// Sampling in simulated time keeps the arrival rate fixed when the clock
// speed changes.
type ArrivalSampler interface {
	// SampleGap returns the next gap. Always positive.
	SampleGap(rng *rand.Rand) float64
}

// minGap keeps two arrivals at one stop from sharing an instant.
const minGap = 1e-6

// PoissonSampler generates exponentially-distributed gaps (CV=1).
type PoissonSampler struct {
	rate float64 // riders per simulated minute
}

func (s *PoissonSampler) SampleGap(rng *rand.Rand) float64 {
	return math.Max(rng.ExpFloat64()/s.rate, minGap)
}

// ConstantSampler spaces arrivals evenly and never draws.
type ConstantSampler struct {
	gap float64
}

func (s *ConstantSampler) SampleGap(*rand.Rand) float64 { return s.gap }

// GammaSampler generates Gamma-distributed gaps. CV > 1 produces bursts
// such as a tram emptying onto the platform.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // CV²/rate
}

func (s *GammaSampler) SampleGap(rng *rand.Rand) float64 {
	return math.Max(gammaRand(rng, s.shape, s.scale), minGap)
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// WeibullSampler generates Weibull-distributed gaps.
type WeibullSampler struct {
	shape float64 // k
	scale float64 // λ, in simulated minutes
}

func (s *WeibullSampler) SampleGap(rng *rand.Rand) float64 {
	// Inverse CDF: scale * (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64
	}
	return math.Max(s.scale*math.Pow(-math.Log(u), 1.0/s.shape), minGap)
}

// NewArrivalSampler creates a sampler for ratePerMinute riders per
// simulated minute. The arrival spec must already be valid and the rate positive.
func NewArrivalSampler(spec ArrivalSpec, ratePerMinute float64) ArrivalSampler {
	cv := 1.0
	if spec.CV != nil {
		cv = *spec.CV
	}
	mean := 1.0 / ratePerMinute
	switch spec.Process {
	case "constant":
		return &ConstantSampler{gap: mean}

	case "gamma":
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{rate: ratePerMinute}
		}
		return &GammaSampler{shape: shape, scale: mean * cv * cv}

	case "weibull":
		k := weibullShapeFromCV(cv)
		// scale = mean / Γ(1 + 1/k)
		return &WeibullSampler{shape: k, scale: mean / math.Gamma(1.0+1.0/k)}

	default:
		return &PoissonSampler{rate: ratePerMinute}
	}
}

// weibullShapeFromCV finds the shape k with CV² = Γ(1+2/k)/Γ(1+1/k)² - 1
// by bisection over [0.1, 100].
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV is monotonically decreasing in k
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: bisection did not converge for CV=%.3f; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}
