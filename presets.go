// Package lwe - Named parameter sets
//
// The presets mirror the LMKCDEY boolean FHE parameter sets published by
// OpenFHE (BINFHE_PARAMSET). Each one is estimated over its ring: dimension
// RingDim, modulus 2^LogQ, secret drawn from SecretDist and error from a
// discrete Gaussian of width PresetSigma.
//
//	Name                  RingDim   LogQ   LWEDim   Target
//	---------------------------------------------------------
//	STD128_LMKCDEY        1024      28     447      128-bit
//	STD128Q_LMKCDEY       1024      27     483      128-bit PQ
//	STD192_LMKCDEY        2048      39     716      192-bit
//	STD192Q_LMKCDEY       2048      36     776      192-bit PQ
//	STD256_LMKCDEY        2048      30     939      256-bit
//	STD256Q_LMKCDEY       2048      28     1019     256-bit PQ
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package lwe

import (
	"fmt"
	"math/big"
)

// PresetSigma is the error standard deviation used by all presets.
const PresetSigma = 3.19

// SecurityLevel is the security a preset targets.
type SecurityLevel int

const (
	// Security128 provides 128-bit classical security
	Security128 SecurityLevel = 128
	// Security128Q provides 128-bit post-quantum security
	Security128Q SecurityLevel = 1128
	// Security192 provides 192-bit classical security
	Security192 SecurityLevel = 192
	// Security192Q provides 192-bit post-quantum security
	Security192Q SecurityLevel = 1192
	// Security256 provides 256-bit classical security
	Security256 SecurityLevel = 256
	// Security256Q provides 256-bit post-quantum security
	Security256Q SecurityLevel = 1256
)

// Bits returns the targeted number of bits of security.
func (s SecurityLevel) Bits() int {
	return int(s) % 1000
}

// Quantum reports whether the level targets quantum adversaries.
func (s SecurityLevel) Quantum() bool {
	return s > 1000
}

func (s SecurityLevel) String() string {
	if s.Quantum() {
		return fmt.Sprintf("%d-bit PQ", s.Bits())
	}
	return fmt.Sprintf("%d-bit", s.Bits())
}

// SecretDistribution is the kind of secret key distribution of a preset.
type SecretDistribution int

const (
	// UniformTernary uses uniform ternary secrets (-1, 0, 1)
	UniformTernary SecretDistribution = iota
	// Gaussian uses Gaussian-distributed secrets
	Gaussian
)

// Preset is a named parameter set.
type Preset struct {
	// Name is the parameter set identifier
	Name string
	// Security is the target security level
	Security SecurityLevel
	// LogQ is the log2 of the ciphertext modulus
	LogQ int
	// RingDim is the polynomial ring dimension (N)
	RingDim int
	// LWEDim is the dimension after key switching to LWE (n)
	LWEDim int
	// SecretDist is the secret key distribution
	SecretDist SecretDistribution
}

var (
	STD128_LMKCDEY  = Preset{Name: "STD128_LMKCDEY", Security: Security128, LogQ: 28, RingDim: 1024, LWEDim: 447, SecretDist: Gaussian}
	STD128Q_LMKCDEY = Preset{Name: "STD128Q_LMKCDEY", Security: Security128Q, LogQ: 27, RingDim: 1024, LWEDim: 483, SecretDist: Gaussian}
	STD192_LMKCDEY  = Preset{Name: "STD192_LMKCDEY", Security: Security192, LogQ: 39, RingDim: 2048, LWEDim: 716, SecretDist: Gaussian}
	STD192Q_LMKCDEY = Preset{Name: "STD192Q_LMKCDEY", Security: Security192Q, LogQ: 36, RingDim: 2048, LWEDim: 776, SecretDist: Gaussian}
	STD256_LMKCDEY  = Preset{Name: "STD256_LMKCDEY", Security: Security256, LogQ: 30, RingDim: 2048, LWEDim: 939, SecretDist: Gaussian}
	STD256Q_LMKCDEY = Preset{Name: "STD256Q_LMKCDEY", Security: Security256Q, LogQ: 28, RingDim: 2048, LWEDim: 1019, SecretDist: Gaussian}
)

// Presets returns all named parameter sets.
func Presets() []Preset {
	return []Preset{
		STD128_LMKCDEY,
		STD128Q_LMKCDEY,
		STD192_LMKCDEY,
		STD192Q_LMKCDEY,
		STD256_LMKCDEY,
		STD256Q_LMKCDEY,
	}
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Modulus returns 2^LogQ.
func (p Preset) Modulus() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(p.LogQ))
}

// Parameters returns the ring LWE parameter set of the preset.
func (p Preset) Parameters() Parameters {
	var secret Distribution = Ternary()
	if p.SecretDist == Gaussian {
		secret = DiscreteGaussian{Stddev: PresetSigma}
	}
	return Parameters{
		N:       p.RingDim,
		Q:       p.Modulus(),
		Secret:  secret,
		Error:   DiscreteGaussian{Stddev: PresetSigma},
		Samples: Unbounded,
	}
}
