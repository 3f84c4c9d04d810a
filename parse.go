// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sort"
)

// parseFunc builds one distribution family from the fields of its spec.
// modulus is the parameter set's modulus and may be nil.
type parseFunc func(f fields, modulus *big.Int) (Distribution, error)

var parsers = map[string]parseFunc{
	NameDiscreteGaussian:      parseDiscreteGaussian,
	NameDiscreteGaussianAlpha: parseDiscreteGaussianAlpha,
	NameCenteredBinomial:      parseCenteredBinomial,
	NameUniform:               parseUniform,
	NameUniformMod:            parseUniformMod,
	NameSparseTernary:         parseSparseTernary,
	NameSparseBinary:          parseSparseBinary,
	NameBinary:                func(fields, *big.Int) (Distribution, error) { return Binary(), nil },
	NameTernary:               func(fields, *big.Int) (Distribution, error) { return Ternary(), nil },
}

// SupportedDistributions returns the accepted spec names in sorted order.
func SupportedDistributions() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseDistribution decodes a JSON distribution spec. modulus is used for
// families whose "q" is optional; it may be nil, in which case "q" is required.
func ParseDistribution(data []byte, modulus *big.Int) (Distribution, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after distribution spec", ErrDecode)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: must be a JSON object", ErrInvalidSpec)
	}
	return DecodeDistribution(obj, modulus)
}

// DecodeDistribution builds a distribution from an already decoded spec
// object. Numbers may be json.Number, float64 or int values.
func DecodeDistribution(obj map[string]any, modulus *big.Int) (Distribution, error) {
	raw, ok := obj["name"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: requires a \"name\" field", ErrInvalidSpec)
	}
	name, ok := raw.(string)
	if !ok {
		return nil, typeMismatch("distribution spec", "name", "a string")
	}

	parse, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidSpec, ErrUnsupportedDistribution, name)
	}
	return parse(fields{dist: name, raw: obj}, modulus)
}

func parseDiscreteGaussian(f fields, _ *big.Int) (Distribution, error) {
	var d DiscreteGaussian
	var err error
	if d.Stddev, err = f.requireNumber("stddev"); err != nil {
		return nil, err
	}
	if d.Stddev <= 0 {
		return nil, outOfRange(f.dist, "stddev", "positive")
	}
	if d.Mean, _, err = f.number("mean"); err != nil {
		return nil, err
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseDiscreteGaussianAlpha(f fields, modulus *big.Int) (Distribution, error) {
	var d DiscreteGaussianAlpha
	var err error
	if d.Alpha, err = f.requireNumber("alpha"); err != nil {
		return nil, err
	}
	if d.Alpha <= 0 {
		return nil, outOfRange(f.dist, "alpha", "positive")
	}
	if d.Q, err = f.modulus(modulus); err != nil {
		return nil, err
	}
	if d.Mean, _, err = f.number("mean"); err != nil {
		return nil, err
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseCenteredBinomial(f fields, _ *big.Int) (Distribution, error) {
	var d CenteredBinomial
	var err error
	if d.Eta, err = f.requireInteger("eta"); err != nil {
		return nil, err
	}
	if d.Eta < 1 {
		return nil, outOfRange(f.dist, "eta", "at least 1")
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseUniform(f fields, _ *big.Int) (Distribution, error) {
	var d Uniform
	var err error
	if d.A, err = f.requireInteger("a"); err != nil {
		return nil, err
	}
	if d.B, err = f.requireInteger("b"); err != nil {
		return nil, err
	}
	if d.A > d.B {
		return nil, outOfRange(f.dist, "b", "at least a")
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseUniformMod(f fields, modulus *big.Int) (Distribution, error) {
	var d UniformMod
	var err error
	if d.Q, err = f.modulus(modulus); err != nil {
		return nil, err
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseSparseTernary(f fields, _ *big.Int) (Distribution, error) {
	var d SparseTernary
	var err error
	if d.P, err = f.requireInteger("p"); err != nil {
		return nil, err
	}
	if d.M, err = f.requireInteger("m"); err != nil {
		return nil, err
	}
	if d.P < 0 {
		return nil, outOfRange(f.dist, "p", "non-negative")
	}
	if d.M < 0 {
		return nil, outOfRange(f.dist, "m", "non-negative")
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseSparseBinary(f fields, _ *big.Int) (Distribution, error) {
	var d SparseBinary
	var err error
	if d.HW, err = f.requireInteger("hw"); err != nil {
		return nil, err
	}
	if d.HW < 0 {
		return nil, outOfRange(f.dist, "hw", "non-negative")
	}
	if d.N, err = f.dim(); err != nil {
		return nil, err
	}
	return d, nil
}

// fields gives typed access to the keys of one spec object.
// A key holding JSON null is treated as absent.
type fields struct {
	dist string
	raw  map[string]any
}

func (f fields) lookup(key string) (any, bool) {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (f fields) rat(key, expected string) (*big.Rat, bool, error) {
	v, ok := f.lookup(key)
	if !ok {
		return nil, false, nil
	}
	r, ok := toRat(v)
	if !ok {
		return nil, true, typeMismatch(f.dist, key, expected)
	}
	return r, true, nil
}

func (f fields) number(key string) (float64, bool, error) {
	r, ok, err := f.rat(key, "a number")
	if !ok || err != nil {
		return 0, ok, err
	}
	x, _ := r.Float64()
	if math.IsInf(x, 0) {
		return 0, true, typeMismatch(f.dist, key, "a finite number")
	}
	return x, true, nil
}

func (f fields) requireNumber(key string) (float64, error) {
	x, ok, err := f.number(key)
	if err == nil && !ok {
		err = missingField(f.dist, key)
	}
	return x, err
}

func (f fields) bigInt(key string) (*big.Int, bool, error) {
	r, ok, err := f.rat(key, "an integer")
	if !ok || err != nil {
		return nil, ok, err
	}
	if !r.IsInt() {
		return nil, true, typeMismatch(f.dist, key, "an integer")
	}
	return new(big.Int).Set(r.Num()), true, nil
}

func (f fields) integer(key string) (int, bool, error) {
	x, ok, err := f.bigInt(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	if !x.IsInt64() || x.Int64() > math.MaxInt || x.Int64() < math.MinInt {
		return 0, true, typeMismatch(f.dist, key, "an integer")
	}
	return int(x.Int64()), true, nil
}

func (f fields) requireInteger(key string) (int, error) {
	x, ok, err := f.integer(key)
	if err == nil && !ok {
		err = missingField(f.dist, key)
	}
	return x, err
}

// dim returns the optional "n" field, 0 when absent.
func (f fields) dim() (int, error) {
	n, ok, err := f.integer("n")
	if err != nil {
		return 0, err
	}
	if ok && n < 1 {
		return 0, outOfRange(f.dist, "n", "at least 1")
	}
	return n, nil
}

// modulus returns "q", falling back to the parameter set's modulus.
func (f fields) modulus(fallback *big.Int) (*big.Int, error) {
	q, ok, err := f.bigInt("q")
	if err != nil {
		return nil, err
	}
	if !ok {
		if fallback == nil {
			return nil, missingField(f.dist, "q")
		}
		q = new(big.Int).Set(fallback)
	}
	if q.Cmp(big.NewInt(2)) < 0 {
		return nil, outOfRange(f.dist, "q", "at least 2")
	}
	return q, nil
}

func toRat(v any) (*big.Rat, bool) {
	switch v := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(v), true
	case int:
		return new(big.Rat).SetInt64(int64(v)), true
	case int64:
		return new(big.Rat).SetInt64(v), true
	case *big.Int:
		return new(big.Rat).SetInt(v), true
	}
	return nil, false
}
