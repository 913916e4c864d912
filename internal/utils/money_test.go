package utils

import "testing"

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "Rp0"},
		{500, "Rp500"},
		{1000, "Rp1.000"},
		{1500000, "Rp1.500.000"},
		{-250000, "-Rp250.000"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.in); got != tc.want {
			t.Errorf("FormatRupiah(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

