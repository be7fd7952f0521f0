package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"94230.004", "94230.00"},
		{"94229.996", "94230.00"},
		{"94230.005", "94230.01"},
		{"100.129", "100.13"},
		{"100", "100.00"},
	}

	for _, tc := range cases {
		got := NormalizePrice(decimal.RequireFromString(tc.in), 2)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"NormalizePrice(%s) = %s, want %s", tc.in, got, tc.want)
	}
}
