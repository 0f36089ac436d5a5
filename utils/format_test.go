package utils

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{0, "", "0.00"},
		{1234.5, "INR", "INR 1,234.50"},
		{1234567.891, "USD", "USD 1,234,567.89"},
		{-9876.54, "", "-9,876.54"},
		{999, "EUR", "EUR 999.00"},
	}

	for _, tc := range cases {
		if got := FormatAmount(tc.amount, tc.currency); got != tc.want {
			t.Fatalf("FormatAmount(%v, %q) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("short"); ok {
		t.Fatalf("short password should fail")
	}
	if ok, reason := ValidatePassword("longenough"); !ok {
		t.Fatalf("valid password rejected: %s", reason)
	}
}
