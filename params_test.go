// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSamples(t *testing.T) {
	for _, s := range []string{"", "oo", "inf", "Infinity", "unbounded", " oo "} {
		m, err := ParseSamples(s)
		require.NoError(t, err, s)
		require.Equal(t, Unbounded, m, s)
		_, bounded := m.Bounded()
		require.False(t, bounded)
	}

	m, err := ParseSamples("100000")
	require.NoError(t, err)
	n, bounded := m.Bounded()
	require.True(t, bounded)
	require.Equal(t, uint64(100000), n)
	require.Equal(t, "100000", m.String())

	for _, s := range []string{"0", "-1", "1.5", "many"} {
		_, err := ParseSamples(s)
		require.ErrorIs(t, err, ErrInvalidParameters, s)
	}
}

func TestSamplesZeroValueIsUnbounded(t *testing.T) {
	var p Parameters
	require.Equal(t, Unbounded, p.Samples)
	require.Equal(t, "oo", p.Samples.String())
}

func TestSamplesJSON(t *testing.T) {
	data, err := json.Marshal(Unbounded)
	require.NoError(t, err)
	require.Equal(t, "null", string(data))

	m, err := SampleCount(42)
	require.NoError(t, err)
	data, err = json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, "42", string(data))

	var got Samples
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, m, got)
	require.NoError(t, json.Unmarshal([]byte("null"), &got))
	require.Equal(t, Unbounded, got)
}

func TestNewParameters(t *testing.T) {
	q := big.NewInt(12289)
	params, err := NewParameters(1024, q, []byte(`{"name": "Binary"}`), []byte(`{"name": "DiscreteGaussianAlpha", "alpha": 0.001}`), Unbounded)
	require.NoError(t, err)
	require.NoError(t, params.Validate())
	require.Equal(t, Binary(), params.Secret)
	require.Equal(t, "12289", params.Error.(DiscreteGaussianAlpha).Q.String())
	require.Equal(t, "n=1024, q=12289, Xs=Uniform(a=0, b=1), Xe=DiscreteGaussianAlpha(alpha=0.001, q=12289), m=oo", params.String())
}

func TestNewParametersErrors(t *testing.T) {
	binary := []byte(`{"name": "Binary"}`)

	_, err := NewParameters(0, big.NewInt(12289), binary, binary, Unbounded)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewParameters(1024, big.NewInt(1), binary, binary, Unbounded)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewParameters(1024, nil, binary, binary, Unbounded)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewParameters(1024, big.NewInt(12289), []byte(`{"name": "Nope"}`), binary, Unbounded)
	require.ErrorIs(t, err, ErrUnsupportedDistribution)
	require.ErrorContains(t, err, "secret distribution")

	_, err = NewParameters(1024, big.NewInt(12289), binary, []byte(`{}`), Unbounded)
	require.ErrorIs(t, err, ErrInvalidSpec)
	require.ErrorContains(t, err, "error distribution")
}

func TestValidate(t *testing.T) {
	p := Parameters{N: 8, Q: big.NewInt(17), Secret: Ternary()}
	require.ErrorIs(t, p.Validate(), ErrInvalidParameters)

	p.Error = CenteredBinomial{Eta: 1}
	require.NoError(t, p.Validate())
}

func TestParametersJSON(t *testing.T) {
	m, err := SampleCount(256)
	require.NoError(t, err)
	p := Parameters{N: 256, Q: big.NewInt(3329), Secret: CenteredBinomial{Eta: 3}, Error: CenteredBinomial{Eta: 2}, Samples: m}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"n": 256,
		"q": 3329,
		"secret": {"name": "CenteredBinomial", "eta": 3},
		"error": {"name": "CenteredBinomial", "eta": 2},
		"m": 256
	}`, string(data))
}

func TestParseModulus(t *testing.T) {
	q, err := ParseModulus("12289")
	require.NoError(t, err)
	require.Equal(t, int64(12289), q.Int64())

	q, err = ParseModulus("1267650600228229401496703205653")
	require.NoError(t, err)
	require.Equal(t, 101, q.BitLen())

	for _, s := range []string{"", "1", "-7", "0x3001", "12.5"} {
		_, err := ParseModulus(s)
		require.ErrorIs(t, err, ErrInvalidParameters, s)
	}
}
