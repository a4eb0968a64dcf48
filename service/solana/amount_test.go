package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_Valid(t *testing.T) {
	for _, raw := range []string{"1", "0.5", "100.000001", "92233720368.54775807"} {
		d, err := ParseAmount(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, raw, d.String())
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"0",
		"-1",
		"1e9",
		"1E9",
		"1,000",
		"1.2.3",
		".5",
		"5.",
		"abc",
		"NaN",
		"Inf",
	} {
		_, err := ParseAmount(raw)
		require.Error(t, err, "input %q should be rejected", raw)

		var invalid *InvalidAmountError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, raw, invalid.Raw)
	}
}

func TestToBaseUnits_Exact(t *testing.T) {
	cases := []struct {
		raw      string
		decimals uint8
		want     uint64
	}{
		{"1", 9, 1_000_000_000},
		{"0.000000001", 9, 1},
		{"5.123456", 6, 5_123_456},
		{"1.5", 0, 1},
		{"42", 5, 4_200_000},
		// A value that loses precision in IEEE-754 doubles but not here.
		{"9223372036.854775807", 9, 9_223_372_036_854_775_807},
	}

	for _, tc := range cases {
		got, err := ParseAmountToBaseUnits(tc.raw, tc.decimals)
		require.NoError(t, err, "input %q", tc.raw)
		assert.Equal(t, tc.want, got, "input %q decimals %d", tc.raw, tc.decimals)
	}
}

func TestToBaseUnits_TruncatesExcessPrecision(t *testing.T) {
	// More fractional digits than the token has are dropped, never rounded up.
	got, err := ParseAmountToBaseUnits("1.0000000019", 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_001), got)
}

func TestToBaseUnits_ZeroAfterTruncation(t *testing.T) {
	// A positive amount that scales to zero base units is not transferable.
	_, err := ParseAmountToBaseUnits("0.0000001", 6)
	require.Error(t, err)

	var invalid *InvalidAmountError
	assert.ErrorAs(t, err, &invalid)
}

func TestToBaseUnits_Overflow(t *testing.T) {
	// 1e20 base units exceeds uint64.
	_, err := ParseAmountToBaseUnits("100000000000", 9)
	require.Error(t, err)

	var invalid *InvalidAmountError
	assert.ErrorAs(t, err, &invalid)
}
