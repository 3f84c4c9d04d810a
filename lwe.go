// Package lwe describes LWE-style parameter sets and the noise distributions
// of their secret and error terms, and reduces the attack costs reported by an
// external lattice estimator to a single bit-security figure.
//
// The attack-cost search itself is delegated to an Estimator (see package
// sage for the implementation backed by the Sage lattice-estimator).
//
// # Distribution specs
//
// Noise distributions are written as small JSON objects with a "name" key:
//
//	{"name": "DiscreteGaussian", "stddev": 3.2}
//	{"name": "DiscreteGaussianAlpha", "alpha": 0.001}
//	{"name": "CenteredBinomial", "eta": 3}
//	{"name": "Uniform", "a": -2, "b": 2}
//	{"name": "UniformMod"}
//	{"name": "SparseTernary", "p": 32, "m": 32}
//	{"name": "SparseBinary", "hw": 64}
//	{"name": "Binary"}
//	{"name": "Ternary"}
//
// Every variant accepts an optional "n"; when it is absent the estimator uses
// the dimension of the parameter set. A missing "q" falls back to the
// modulus of the parameter set.
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package lwe

import "context"

// Mode selects between the estimator's fast and full attack searches.
type Mode uint8

const (
	// ModeRough runs the estimator's reduced attack set with coarse cost models.
	ModeRough Mode = iota
	// ModeExact runs the full attack enumeration.
	ModeExact
)

func (m Mode) String() string {
	if m == ModeExact {
		return "exact"
	}
	return "rough"
}

// Estimator computes attack costs for a parameter set.
type Estimator interface {
	// Estimate runs the attack-cost search for params in the given mode.
	Estimate(ctx context.Context, params Parameters, mode Mode) (*Estimate, error)
}
