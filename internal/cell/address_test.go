package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColLetters(t *testing.T) {
	cases := []struct {
		col     int
		letters string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tc := range cases {
		t.Run(tc.letters, func(t *testing.T) {
			assert.Equal(t, tc.letters, ColToLetters(tc.col))
			col, err := LettersToCol(tc.letters)
			require.NoError(t, err)
			assert.Equal(t, tc.col, col)
		})
	}
}

func TestLettersToColLowercase(t *testing.T) {
	col, err := LettersToCol("aa")
	require.NoError(t, err)
	assert.Equal(t, 26, col)
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in   string
		want Address
	}{
		{"A1", Address{0, 0}},
		{"B2", Address{1, 1}},
		{"Z10", Address{25, 9}},
		{"AA100", Address{26, 99}},
		{"c3", Address{2, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAddress(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseAddressRoundTrip(t *testing.T) {
	for _, s := range []string{"A1", "B2", "Z99", "AA1", "AZH4000"} {
		addr, err := ParseAddress(s)
		require.NoError(t, err)
		assert.Equal(t, s, addr.String())
	}
}

func TestParseAddressRejects(t *testing.T) {
	for _, s := range []string{"", "A", "1", "1A", "A0", "A-1", "A1B", "$A$1", "A 1"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseAddress(s)
			assert.ErrorIs(t, err, ErrBadAddress)
		})
	}
}

func TestRangeNormalization(t *testing.T) {
	r, err := ParseRange("B3:A1")
	require.NoError(t, err)
	assert.Equal(t, Address{0, 0}, r.Start)
	assert.Equal(t, Address{1, 2}, r.End)
	assert.Equal(t, "A1:B3", r.String())
	assert.Equal(t, 6, r.Size())
}

func TestRangeAddressesRowMajor(t *testing.T) {
	r, err := ParseRange("A1:B2")
	require.NoError(t, err)
	want := []Address{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	assert.Equal(t, want, r.Addresses())
}

func TestRangeContains(t *testing.T) {
	r, err := ParseRange("B2:D4")
	require.NoError(t, err)
	assert.True(t, r.Contains(Address{2, 2}))
	assert.True(t, r.Contains(Address{1, 1}))
	assert.False(t, r.Contains(Address{0, 0}))
	assert.False(t, r.Contains(Address{4, 2}))
}
