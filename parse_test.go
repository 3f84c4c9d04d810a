// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

func TestParseDistribution(t *testing.T) {
	q := big.NewInt(12289)

	tests := []struct {
		spec string
		want Distribution
	}{
		{`{"name": "DiscreteGaussian", "stddev": 3.2}`, DiscreteGaussian{Stddev: 3.2}},
		{`{"name": "DiscreteGaussian", "stddev": 3.2, "mean": -0.5, "n": 256}`, DiscreteGaussian{Stddev: 3.2, Mean: -0.5, N: 256}},
		{`{"name": "DiscreteGaussianAlpha", "alpha": 0.001}`, DiscreteGaussianAlpha{Alpha: 0.001, Q: big.NewInt(12289)}},
		{`{"name": "DiscreteGaussianAlpha", "alpha": 0.001, "q": 7681, "mean": 1}`, DiscreteGaussianAlpha{Alpha: 0.001, Q: big.NewInt(7681), Mean: 1}},
		{`{"name": "CenteredBinomial", "eta": 3}`, CenteredBinomial{Eta: 3}},
		{`{"name": "CenteredBinomial", "eta": 2, "n": 512}`, CenteredBinomial{Eta: 2, N: 512}},
		{`{"name": "Uniform", "a": -2, "b": 2}`, Uniform{A: -2, B: 2}},
		{`{"name": "UniformMod"}`, UniformMod{Q: big.NewInt(12289)}},
		{`{"name": "UniformMod", "q": 3329, "n": 8}`, UniformMod{Q: big.NewInt(3329), N: 8}},
		{`{"name": "SparseTernary", "p": 32, "m": 31}`, SparseTernary{P: 32, M: 31}},
		{`{"name": "SparseBinary", "hw": 64}`, SparseBinary{HW: 64}},
		{`{"name": "Binary"}`, Uniform{A: 0, B: 1}},
		{`{"name": "Ternary"}`, Uniform{A: -1, B: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseDistribution([]byte(tt.spec), q)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, bigIntComparer); diff != "" {
				t.Errorf("ParseDistribution() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEveryNameParses(t *testing.T) {
	minimal := map[string]string{
		NameDiscreteGaussian:      `{"name": "DiscreteGaussian", "stddev": 1}`,
		NameDiscreteGaussianAlpha: `{"name": "DiscreteGaussianAlpha", "alpha": 0.01}`,
		NameCenteredBinomial:      `{"name": "CenteredBinomial", "eta": 1}`,
		NameUniform:               `{"name": "Uniform", "a": 0, "b": 3}`,
		NameUniformMod:            `{"name": "UniformMod"}`,
		NameSparseTernary:         `{"name": "SparseTernary", "p": 1, "m": 1}`,
		NameSparseBinary:          `{"name": "SparseBinary", "hw": 1}`,
		NameBinary:                `{"name": "Binary"}`,
		NameTernary:               `{"name": "Ternary"}`,
	}
	require.ElementsMatch(t, SupportedDistributions(), keys(minimal))

	for name, spec := range minimal {
		d, err := ParseDistribution([]byte(spec), big.NewInt(97))
		require.NoError(t, err, name)
		require.Zero(t, d.Dim(), name)
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestBinaryTernaryMatchUniform(t *testing.T) {
	q := big.NewInt(12289)

	binary, err := ParseDistribution([]byte(`{"name": "Binary"}`), q)
	require.NoError(t, err)
	uniform01, err := ParseDistribution([]byte(`{"name": "Uniform", "a": 0, "b": 1}`), q)
	require.NoError(t, err)
	require.Equal(t, uniform01, binary)

	ternary, err := ParseDistribution([]byte(`{"name": "Ternary"}`), q)
	require.NoError(t, err)
	uniform11, err := ParseDistribution([]byte(`{"name": "Uniform", "a": -1, "b": 1}`), q)
	require.NoError(t, err)
	require.Equal(t, uniform11, ternary)
}

func TestModulusFallbackIsCopied(t *testing.T) {
	q := big.NewInt(12289)
	d, err := ParseDistribution([]byte(`{"name": "UniformMod"}`), q)
	require.NoError(t, err)

	q.SetInt64(5)
	require.Equal(t, "12289", d.(UniformMod).Q.String())
}

func TestLargeModulus(t *testing.T) {
	spec := `{"name": "UniformMod", "q": 340282366920938463463374607431768211457}`
	d, err := ParseDistribution([]byte(spec), nil)
	require.NoError(t, err)
	require.Equal(t, "340282366920938463463374607431768211457", d.(UniformMod).Q.String())
}

func TestParseDistributionErrors(t *testing.T) {
	q := big.NewInt(12289)

	tests := []struct {
		name    string
		spec    string
		modulus *big.Int
		is      []error
		field   string
	}{
		{"empty", ``, q, []error{ErrDecode}, ""},
		{"malformed", `{"name": `, q, []error{ErrDecode}, ""},
		{"trailing", `{"name": "Binary"} {}`, q, []error{ErrDecode}, ""},
		{"not an object", `["Binary"]`, q, []error{ErrInvalidSpec}, ""},
		{"missing name", `{"stddev": 3.2}`, q, []error{ErrInvalidSpec}, ""},
		{"null name", `{"name": null}`, q, []error{ErrInvalidSpec}, ""},
		{"name not a string", `{"name": 3}`, q, []error{ErrInvalidSpec, ErrTypeMismatch}, "name"},
		{"unknown name", `{"name": "Gaussian"}`, q, []error{ErrInvalidSpec, ErrUnsupportedDistribution}, ""},
		{"names are case sensitive", `{"name": "binary"}`, q, []error{ErrUnsupportedDistribution}, ""},
		{"missing stddev", `{"name": "DiscreteGaussian"}`, q, []error{ErrInvalidSpec, ErrMissingField}, "stddev"},
		{"null stddev", `{"name": "DiscreteGaussian", "stddev": null}`, q, []error{ErrMissingField}, "stddev"},
		{"string stddev", `{"name": "DiscreteGaussian", "stddev": "3.2"}`, q, []error{ErrInvalidSpec, ErrTypeMismatch}, "stddev"},
		{"negative stddev", `{"name": "DiscreteGaussian", "stddev": -1}`, q, []error{ErrInvalidSpec}, "stddev"},
		{"bool mean", `{"name": "DiscreteGaussian", "stddev": 1, "mean": true}`, q, []error{ErrTypeMismatch}, "mean"},
		{"missing alpha", `{"name": "DiscreteGaussianAlpha"}`, q, []error{ErrMissingField}, "alpha"},
		{"alpha without modulus", `{"name": "DiscreteGaussianAlpha", "alpha": 0.1}`, nil, []error{ErrMissingField}, "q"},
		{"fractional q", `{"name": "DiscreteGaussianAlpha", "alpha": 0.1, "q": 12.5}`, q, []error{ErrTypeMismatch}, "q"},
		{"missing eta", `{"name": "CenteredBinomial"}`, q, []error{ErrMissingField}, "eta"},
		{"fractional eta", `{"name": "CenteredBinomial", "eta": 2.5}`, q, []error{ErrTypeMismatch}, "eta"},
		{"zero eta", `{"name": "CenteredBinomial", "eta": 0}`, q, []error{ErrInvalidSpec}, "eta"},
		{"missing a", `{"name": "Uniform", "b": 1}`, q, []error{ErrMissingField}, "a"},
		{"missing b", `{"name": "Uniform", "a": 1}`, q, []error{ErrMissingField}, "b"},
		{"empty range", `{"name": "Uniform", "a": 2, "b": 1}`, q, []error{ErrInvalidSpec}, "b"},
		{"UniformMod without modulus", `{"name": "UniformMod"}`, nil, []error{ErrMissingField}, "q"},
		{"UniformMod tiny q", `{"name": "UniformMod", "q": 1}`, q, []error{ErrInvalidSpec}, "q"},
		{"missing p", `{"name": "SparseTernary", "m": 1}`, q, []error{ErrMissingField}, "p"},
		{"missing m", `{"name": "SparseTernary", "p": 1}`, q, []error{ErrMissingField}, "m"},
		{"negative m", `{"name": "SparseTernary", "p": 1, "m": -1}`, q, []error{ErrInvalidSpec}, "m"},
		{"missing hw", `{"name": "SparseBinary"}`, q, []error{ErrMissingField}, "hw"},
		{"string n", `{"name": "SparseBinary", "hw": 1, "n": "8"}`, q, []error{ErrTypeMismatch}, "n"},
		{"zero n", `{"name": "CenteredBinomial", "eta": 1, "n": 0}`, q, []error{ErrInvalidSpec}, "n"},
		{"huge integer", `{"name": "SparseBinary", "hw": 1e30}`, q, []error{ErrTypeMismatch}, "hw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDistribution([]byte(tt.spec), tt.modulus)
			require.Error(t, err)
			require.Nil(t, d)
			for _, target := range tt.is {
				require.ErrorIs(t, err, target)
			}
			if tt.field != "" {
				var fe *FieldError
				require.True(t, errors.As(err, &fe), "want *FieldError, got %T", err)
				require.Equal(t, tt.field, fe.Field)
				require.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestTypeMismatchNamesExpectedType(t *testing.T) {
	_, err := ParseDistribution([]byte(`{"name": "CenteredBinomial", "eta": "three"}`), nil)
	require.EqualError(t, err, `CenteredBinomial: type mismatch: "eta" must be an integer`)

	_, err = ParseDistribution([]byte(`{"name": "DiscreteGaussian"}`), nil)
	require.EqualError(t, err, `DiscreteGaussian: missing field: requires "stddev"`)
}

func TestIntegralFloatsAreIntegers(t *testing.T) {
	d, err := ParseDistribution([]byte(`{"name": "CenteredBinomial", "eta": 3.0}`), nil)
	require.NoError(t, err)
	require.Equal(t, CenteredBinomial{Eta: 3}, d)
}

func TestDecodeDistribution(t *testing.T) {
	// Values as produced by json.Unmarshal without UseNumber.
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"name": "SparseTernary", "p": 16, "m": 16, "n": 1024}`), &obj))

	d, err := DecodeDistribution(obj, nil)
	require.NoError(t, err)
	require.Equal(t, SparseTernary{P: 16, M: 16, N: 1024}, d)

	d, err = DecodeDistribution(map[string]any{"name": "Uniform", "a": -3, "b": 3}, nil)
	require.NoError(t, err)
	require.Equal(t, Uniform{A: -3, B: 3}, d)
}

func TestCanonicalRoundTrip(t *testing.T) {
	q := big.NewInt(12289)
	for _, d := range []Distribution{
		DiscreteGaussian{Stddev: 3.19, Mean: 0.5, N: 12},
		DiscreteGaussianAlpha{Alpha: 0.0005, Q: big.NewInt(7681)},
		CenteredBinomial{Eta: 2},
		Uniform{A: -4, B: 4, N: 3},
		UniformMod{Q: big.NewInt(65537)},
		SparseTernary{P: 10, M: 12},
		SparseBinary{HW: 20, N: 100},
	} {
		data, err := json.Marshal(d)
		require.NoError(t, err)

		got, err := ParseDistribution(data, q)
		require.NoError(t, err, string(data))
		if diff := cmp.Diff(d, got, bigIntComparer); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", data, diff)
		}
	}
}

func TestCanonicalForm(t *testing.T) {
	data, err := json.Marshal(DiscreteGaussian{Stddev: 3.2})
	require.NoError(t, err)
	require.JSONEq(t, `{"name": "DiscreteGaussian", "stddev": 3.2, "mean": 0}`, string(data))

	data, err = json.Marshal(DiscreteGaussianAlpha{Alpha: 0.25, Q: big.NewInt(12289), N: 4})
	require.NoError(t, err)
	require.JSONEq(t, `{"name": "DiscreteGaussianAlpha", "alpha": 0.25, "q": 12289, "mean": 0, "n": 4}`, string(data))
}

func TestDescribe(t *testing.T) {
	require.Equal(t, "DiscreteGaussian(stddev=3.2)", Describe(DiscreteGaussian{Stddev: 3.2}))
	require.Equal(t, "DiscreteGaussian(stddev=3.2, mean=1, n=8)", Describe(DiscreteGaussian{Stddev: 3.2, Mean: 1, N: 8}))
	require.Equal(t, "Uniform(a=0, b=1)", Describe(Binary()))
	require.Equal(t, "SparseTernary(p=3, m=4)", Describe(SparseTernary{P: 3, M: 4}))
	require.Equal(t, "<nil>", Describe(nil))
}
