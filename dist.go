// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Distribution family names as accepted in specs and understood by the estimator.
const (
	NameDiscreteGaussian      = "DiscreteGaussian"
	NameDiscreteGaussianAlpha = "DiscreteGaussianAlpha"
	NameCenteredBinomial      = "CenteredBinomial"
	NameUniform               = "Uniform"
	NameUniformMod            = "UniformMod"
	NameSparseTernary         = "SparseTernary"
	NameSparseBinary          = "SparseBinary"
	NameBinary                = "Binary"
	NameTernary               = "Ternary"
)

// Distribution is a fully resolved noise distribution descriptor.
// The concrete types are DiscreteGaussian, DiscreteGaussianAlpha,
// CenteredBinomial, Uniform, UniformMod, SparseTernary and SparseBinary.
type Distribution interface {
	// Name returns the estimator's name for the distribution family.
	Name() string
	// Dim returns the explicit dimension, or 0 if the parameter set's applies.
	Dim() int
	json.Marshaler
	isDistribution()
}

// DiscreteGaussian is a discrete Gaussian with standard deviation Stddev
// centred on Mean.
type DiscreteGaussian struct {
	Stddev float64 `json:"stddev"`
	Mean   float64 `json:"mean"`
	N      int     `json:"n,omitempty"`
}

// DiscreteGaussianAlpha is a discrete Gaussian given by its relative width
// alpha = sqrt(2*pi)*stddev/Q.
type DiscreteGaussianAlpha struct {
	Alpha float64  `json:"alpha"`
	Q     *big.Int `json:"q"`
	Mean  float64  `json:"mean"`
	N     int      `json:"n,omitempty"`
}

// CenteredBinomial samples the difference of two sums of Eta fair bits.
type CenteredBinomial struct {
	Eta int `json:"eta"`
	N   int `json:"n,omitempty"`
}

// Uniform is uniform over the integers in [A, B].
type Uniform struct {
	A int `json:"a"`
	B int `json:"b"`
	N int `json:"n,omitempty"`
}

// UniformMod is uniform over Z/QZ, centred on zero.
type UniformMod struct {
	Q *big.Int `json:"q"`
	N int      `json:"n,omitempty"`
}

// SparseTernary has exactly P entries equal to +1 and M entries equal to -1.
type SparseTernary struct {
	P int `json:"p"`
	M int `json:"m"`
	N int `json:"n,omitempty"`
}

// SparseBinary has exactly HW entries equal to 1.
type SparseBinary struct {
	HW int `json:"hw"`
	N  int `json:"n,omitempty"`
}

// Binary returns the descriptor of the uniform {0, 1} distribution.
func Binary() Uniform { return Uniform{A: 0, B: 1} }

// Ternary returns the descriptor of the uniform {-1, 0, 1} distribution.
func Ternary() Uniform { return Uniform{A: -1, B: 1} }

func (DiscreteGaussian) Name() string      { return NameDiscreteGaussian }
func (DiscreteGaussianAlpha) Name() string { return NameDiscreteGaussianAlpha }
func (CenteredBinomial) Name() string      { return NameCenteredBinomial }
func (Uniform) Name() string               { return NameUniform }
func (UniformMod) Name() string            { return NameUniformMod }
func (SparseTernary) Name() string         { return NameSparseTernary }
func (SparseBinary) Name() string          { return NameSparseBinary }

func (d DiscreteGaussian) Dim() int      { return d.N }
func (d DiscreteGaussianAlpha) Dim() int { return d.N }
func (d CenteredBinomial) Dim() int      { return d.N }
func (d Uniform) Dim() int               { return d.N }
func (d UniformMod) Dim() int            { return d.N }
func (d SparseTernary) Dim() int         { return d.N }
func (d SparseBinary) Dim() int          { return d.N }

func (DiscreteGaussian) isDistribution()      {}
func (DiscreteGaussianAlpha) isDistribution() {}
func (CenteredBinomial) isDistribution()      {}
func (Uniform) isDistribution()               {}
func (UniformMod) isDistribution()            {}
func (SparseTernary) isDistribution()         {}
func (SparseBinary) isDistribution()          {}

// The MarshalJSON methods emit the canonical {"name": ..., fields...} form
// read back by ParseDistribution and by the estimator script.

func (d DiscreteGaussian) MarshalJSON() ([]byte, error) {
	type plain DiscreteGaussian
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

func (d DiscreteGaussianAlpha) MarshalJSON() ([]byte, error) {
	type plain DiscreteGaussianAlpha
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

func (d CenteredBinomial) MarshalJSON() ([]byte, error) {
	type plain CenteredBinomial
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

func (d Uniform) MarshalJSON() ([]byte, error) {
	type plain Uniform
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

func (d UniformMod) MarshalJSON() ([]byte, error) {
	type plain UniformMod
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

func (d SparseTernary) MarshalJSON() ([]byte, error) {
	type plain SparseTernary
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

func (d SparseBinary) MarshalJSON() ([]byte, error) {
	type plain SparseBinary
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{d.Name(), plain(d)})
}

// Describe returns a short human readable form of d, e.g. "DiscreteGaussian(stddev=3.2)".
func Describe(d Distribution) string {
	var s string
	switch d := d.(type) {
	case DiscreteGaussian:
		s = fmt.Sprintf("stddev=%g", d.Stddev)
		if d.Mean != 0 {
			s += fmt.Sprintf(", mean=%g", d.Mean)
		}
	case DiscreteGaussianAlpha:
		s = fmt.Sprintf("alpha=%g, q=%s", d.Alpha, d.Q)
		if d.Mean != 0 {
			s += fmt.Sprintf(", mean=%g", d.Mean)
		}
	case CenteredBinomial:
		s = fmt.Sprintf("eta=%d", d.Eta)
	case Uniform:
		s = fmt.Sprintf("a=%d, b=%d", d.A, d.B)
	case UniformMod:
		s = fmt.Sprintf("q=%s", d.Q)
	case SparseTernary:
		s = fmt.Sprintf("p=%d, m=%d", d.P, d.M)
	case SparseBinary:
		s = fmt.Sprintf("hw=%d", d.HW)
	case nil:
		return "<nil>"
	}
	if n := d.Dim(); n != 0 {
		s += fmt.Sprintf(", n=%d", n)
	}
	return d.Name() + "(" + s + ")"
}
