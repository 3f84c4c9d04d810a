// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/luxfi/lattice/v7/ring"
)

// ErrNoRingEquivalent is returned for descriptors the ring samplers cannot draw from.
var ErrNoRingEquivalent = errors.New("no ring sampler equivalent")

// GaussianTailCut is the bound, in standard deviations, given to ring.DiscreteGaussian.
const GaussianTailCut = 6

// RingDistribution maps d to the sampler parameters of the lattice library,
// so a parameter set that was estimated can be instantiated as-is.
func RingDistribution(d Distribution) (ring.DistributionParameters, error) {
	switch d := d.(type) {
	case DiscreteGaussian:
		if d.Mean == 0 {
			return ring.DiscreteGaussian{Sigma: d.Stddev, Bound: GaussianTailCut * d.Stddev}, nil
		}
	case DiscreteGaussianAlpha:
		if d.Mean == 0 {
			sigma := AlphaToStddev(d.Alpha, d.Q)
			if !math.IsInf(sigma, 0) {
				return ring.DiscreteGaussian{Sigma: sigma, Bound: GaussianTailCut * sigma}, nil
			}
		}
	case Uniform:
		if d == Ternary() {
			return ring.Ternary{P: 2.0 / 3.0}, nil
		}
	case SparseTernary:
		// The ternary sampler draws signs uniformly, so only balanced weights match.
		if d.P == d.M && d.P > 0 {
			return ring.Ternary{H: d.P + d.M}, nil
		}
	case UniformMod:
		return ring.Uniform{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRingEquivalent, Describe(d))
}

// FromRingDistribution converts ring sampler parameters back into a descriptor.
// q is needed for ring.Uniform.
func FromRingDistribution(X ring.DistributionParameters, q *big.Int) (Distribution, error) {
	switch X := X.(type) {
	case ring.DiscreteGaussian:
		if X.Sigma <= 0 {
			return nil, outOfRange(NameDiscreteGaussian, "stddev", "positive")
		}
		return DiscreteGaussian{Stddev: X.Sigma}, nil
	case ring.Ternary:
		switch {
		case X.H > 0:
			return SparseTernary{P: X.H / 2, M: X.H - X.H/2}, nil
		case X.P == 2.0/3.0:
			return Ternary(), nil
		}
		return nil, fmt.Errorf("%w: ternary with P=%g has no uniform equivalent", ErrUnsupportedDistribution, X.P)
	case ring.Uniform:
		if q == nil {
			return nil, missingField(NameUniformMod, "q")
		}
		return UniformMod{Q: new(big.Int).Set(q)}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedDistribution, X)
}

// AlphaToStddev returns alpha*q/sqrt(2*pi), the standard deviation of a
// discrete Gaussian of relative width alpha modulo q.
func AlphaToStddev(alpha float64, q *big.Int) float64 {
	qf, _ := new(big.Float).SetInt(q).Float64()
	return alpha * qf / math.Sqrt(2*math.Pi)
}
