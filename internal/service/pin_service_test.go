package service

import "testing"

func TestNormalizePercent(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative clamps to zero", -3.5, 0},
		{"zero stays", 0, 0},
		{"mid value rounds to two decimals", 41.237, 41.24},
		{"rounds down", 41.234, 41.23},
		{"hundred stays", 100, 100},
		{"above hundred clamps", 150.9, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePercent(tc.in); got != tc.want {
				t.Errorf("NormalizePercent(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
