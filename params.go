// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Samples is the number of LWE samples available to the attacker.
// The zero value is Unbounded.
type Samples struct {
	m uint64
}

// Unbounded gives the attacker as many samples as it asks for.
var Unbounded = Samples{}

// SampleCount returns a bounded sample count. m must be positive.
func SampleCount(m uint64) (Samples, error) {
	if m == 0 {
		return Samples{}, fmt.Errorf("%w: sample count must be positive", ErrInvalidParameters)
	}
	return Samples{m: m}, nil
}

// ParseSamples parses a sample count. The empty string and the spellings
// "oo", "inf", "infinity" and "unbounded" all mean Unbounded.
func ParseSamples(s string) (Samples, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "oo", "inf", "infinity", "unbounded":
		return Unbounded, nil
	}
	m, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Samples{}, fmt.Errorf("%w: sample count %q is not a positive integer", ErrInvalidParameters, s)
	}
	return SampleCount(m)
}

// Bounded returns the sample count and whether it is finite.
func (s Samples) Bounded() (uint64, bool) {
	return s.m, s.m != 0
}

func (s Samples) String() string {
	if s.m == 0 {
		return "oo"
	}
	return strconv.FormatUint(s.m, 10)
}

// MarshalJSON encodes Unbounded as null and a bounded count as a number.
func (s Samples) MarshalJSON() ([]byte, error) {
	if s.m == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(s.m, 10)), nil
}

func (s *Samples) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Unbounded
		return nil
	}
	var m uint64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode samples: %w", err)
	}
	*s = Samples{m: m}
	return nil
}

// Parameters is an LWE parameter set.
type Parameters struct {
	// N is the secret dimension.
	N int
	// Q is the modulus.
	Q *big.Int
	// Secret is the distribution of the secret coefficients.
	Secret Distribution
	// Error is the distribution of the error coefficients.
	Error Distribution
	// Samples is the number of samples, Unbounded by default.
	Samples Samples
}

// NewParameters parses the secret and error specs against q and returns a
// validated parameter set.
func NewParameters(n int, q *big.Int, secretSpec, errorSpec []byte, samples Samples) (Parameters, error) {
	params := Parameters{N: n, Q: q, Samples: samples}
	if err := params.validateScalars(); err != nil {
		return Parameters{}, err
	}

	var err error
	if params.Secret, err = ParseDistribution(secretSpec, q); err != nil {
		return Parameters{}, fmt.Errorf("secret distribution: %w", err)
	}
	if params.Error, err = ParseDistribution(errorSpec, q); err != nil {
		return Parameters{}, fmt.Errorf("error distribution: %w", err)
	}
	return params, nil
}

// Validate checks that the parameter set can be handed to an estimator.
func (p Parameters) Validate() error {
	if err := p.validateScalars(); err != nil {
		return err
	}
	if p.Secret == nil {
		return fmt.Errorf("%w: missing secret distribution", ErrInvalidParameters)
	}
	if p.Error == nil {
		return fmt.Errorf("%w: missing error distribution", ErrInvalidParameters)
	}
	return nil
}

func (p Parameters) validateScalars() error {
	if p.N < 1 {
		return fmt.Errorf("%w: ring dimension must be positive, got %d", ErrInvalidParameters, p.N)
	}
	if p.Q == nil || p.Q.Cmp(big.NewInt(2)) < 0 {
		return fmt.Errorf("%w: modulus must be at least 2, got %v", ErrInvalidParameters, p.Q)
	}
	return nil
}

func (p Parameters) String() string {
	return fmt.Sprintf("n=%d, q=%v, Xs=%s, Xe=%s, m=%s",
		p.N, p.Q, Describe(p.Secret), Describe(p.Error), p.Samples)
}

// MarshalJSON emits the canonical request form used by estimators and caches.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		N       int          `json:"n"`
		Q       *big.Int     `json:"q"`
		Secret  Distribution `json:"secret"`
		Error   Distribution `json:"error"`
		Samples Samples      `json:"m"`
	}{p.N, p.Q, p.Secret, p.Error, p.Samples})
}

// ParseModulus parses a decimal modulus of arbitrary size.
func ParseModulus(s string) (*big.Int, error) {
	q, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("%w: modulus %q is not an integer", ErrInvalidParameters, s)
	}
	if q.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("%w: modulus must be at least 2, got %s", ErrInvalidParameters, q)
	}
	return q, nil
}
