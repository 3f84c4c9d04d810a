// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ALTree/bigfloat"
)

// InfiniteSecurity is reported when no attack has a finite cost.
const InfiniteSecurity uint64 = math.MaxUint32

// costPrecision is the mantissa size used for attack costs.
const costPrecision = 256

// AttackCost is the cost of one attack as reported by the estimator.
type AttackCost struct {
	// Name is the attack identifier, e.g. "usvp", "bdd", "dual_hybrid".
	Name string `json:"name"`
	// Rop is the number of ring operations as a decimal string, or "inf".
	Rop string `json:"rop"`
	// Fields holds the remaining entries of the estimator's cost record
	// (beta, d, red, ...), formatted by the estimator.
	Fields map[string]string `json:"fields,omitempty"`
}

// Cost parses Rop.
func (c AttackCost) Cost() (*big.Float, error) {
	s := strings.TrimSpace(c.Rop)
	switch strings.ToLower(strings.TrimPrefix(s, "+")) {
	case "inf", "infinity", "oo":
		return new(big.Float).SetInf(false), nil
	}
	x, ok := new(big.Float).SetPrec(costPrecision).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: attack %s: malformed rop %q", ErrEstimator, c.Name, c.Rop)
	}
	if x.Sign() <= 0 {
		return nil, fmt.Errorf("%w: attack %s: non-positive rop %q", ErrEstimator, c.Name, c.Rop)
	}
	return x, nil
}

// Log2 returns log2(rop), +Inf for infinite costs.
func (c AttackCost) Log2() (float64, error) {
	x, err := c.Cost()
	if err != nil {
		return 0, err
	}
	return log2(x), nil
}

func log2(x *big.Float) float64 {
	if x.IsInf() {
		return math.Inf(1)
	}
	ln2 := bigfloat.Log(new(big.Float).SetPrec(costPrecision).SetInt64(2))
	l, _ := new(big.Float).Quo(bigfloat.Log(x), ln2).Float64()
	return l
}

// Estimate is the outcome of one estimator run.
type Estimate struct {
	Mode    Mode         `json:"mode"`
	Attacks []AttackCost `json:"attacks"`
	// Bits is floor(log2) of the cheapest attack's rop.
	Bits uint64 `json:"bits"`
}

// NewEstimate collects the attack costs of a run and computes the security level.
func NewEstimate(mode Mode, attacks []AttackCost) (*Estimate, error) {
	bits, err := SecurityBits(attacks)
	if err != nil {
		return nil, err
	}
	return &Estimate{Mode: mode, Attacks: attacks, Bits: bits}, nil
}

// Cheapest returns the attack with the lowest rop.
func (e *Estimate) Cheapest() (AttackCost, bool) {
	var (
		best    AttackCost
		bestRop *big.Float
	)
	for _, a := range e.Attacks {
		x, err := a.Cost()
		if err != nil {
			continue
		}
		if bestRop == nil || x.Cmp(bestRop) < 0 {
			best, bestRop = a, x
		}
	}
	return best, bestRop != nil
}

// SecurityBits returns floor(log2(min rop)) over attacks. No attacks yields 0,
// an infinite minimum yields InfiniteSecurity and costs below 2 yield 0.
func SecurityBits(attacks []AttackCost) (uint64, error) {
	var lowest *big.Float
	for _, a := range attacks {
		x, err := a.Cost()
		if err != nil {
			return 0, err
		}
		if lowest == nil || x.Cmp(lowest) < 0 {
			lowest = x
		}
	}

	switch {
	case lowest == nil:
		return 0, nil
	case lowest.IsInf():
		return InfiniteSecurity, nil
	}

	// x = mant * 2^exp with 0.5 <= mant < 1, so floor(log2 x) = exp-1.
	exp := lowest.MantExp(nil)
	if exp < 1 {
		return 0, nil
	}
	if uint64(exp-1) > InfiniteSecurity {
		return InfiniteSecurity, nil
	}
	return uint64(exp - 1), nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "rough":
		*m = ModeRough
	case "exact":
		*m = ModeExact
	default:
		return fmt.Errorf("unknown estimation mode %q", text)
	}
	return nil
}
