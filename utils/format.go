package utils

import (
	"strconv"
	"strings"
	"time"
)

// FormatDisplayDate returns the date the way the portal renders it in
// notifications and emails.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("02 Jan 2006")
}

// FormatDisplayDatePtr returns the formatted date for pointer values.
func FormatDisplayDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDisplayDate(*t)
}

// FormatAmount renders a monetary amount with thousands separators and two
// decimals, prefixed with the currency code when one is set.
func FormatAmount(amount float64, currency string) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, ",") + fracPart
	if negative {
		out = "-" + out
	}
	if currency != "" {
		out = currency + " " + out
	}
	return out
}
