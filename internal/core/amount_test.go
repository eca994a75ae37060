package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"10rb", "10000", true},
		{"10RB", "10000", true},
		{"25 ribu", "25000", true},
		{"2,5rb", "2500", true},
		{"1,5jt", "1500000", true},
		{"1jt", "1000000", true},
		{"3 juta", "3000000", true},
		{"100k", "100000", true},
		{"0,5k", "500", true},
		{"50000", "50000", true},
		{"1,5", "1.5", true},
		{"1.5", "1.5", true},
		{"1.500.000", "1500000", true},
		{"1.500,5", "1500.5", true},
		{"1.500rb", "1500", true},
		{"2.500k", "2500", true},
		{"1.5jt", "1500000", true},
		{"1.500.000rb", "", false},
		{" 75000 ", "75000", true},
		{"0", "0", true},
		{"abc", "", false},
		{"", "", false},
		{"rb", "", false},
		{"-10rb", "", false},
		{"10rbk", "", false},
		{"2jt500rb", "", false},
		{"1,2,3", "", false},
		{"1.2.3", "", false},
		{"10x", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if !tc.ok {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %s, want error", tc.in, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			}
			if got.String() != tc.out {
				t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.out)
			}
		})
	}
}
