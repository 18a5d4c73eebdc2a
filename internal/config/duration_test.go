package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"900s", 900 * time.Second},
	}

	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDurationRejectsMalformedInput(t *testing.T) {
	bad := []string{
		"",
		"m",
		"15",
		"15w",  // unknown unit
		"15 m", // embedded space
		"abcm",
		"0m",
		"-5m",
	}

	for _, in := range bad {
		_, err := ParseDuration(in)
		assert.Error(t, err, "expected %q to be rejected", in)
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("5m")))
	assert.Equal(t, 5*time.Minute, d.Std())
	assert.Equal(t, 300, d.Seconds())

	assert.Error(t, d.UnmarshalText([]byte("5x")))
}
