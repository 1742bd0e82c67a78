package value

import (
	"strconv"
	"strings"
)

// FormatNumber renders a number the way PRINT and STR$ do: a leading
// space for non-negative values (there is no separate sign character to
// draw, so the space reserves the column a minus sign would occupy),
// shortest round-trip decimal otherwise, with Go's lowercase exponent
// marker uppercased to match BASIC's "E" notation.
func FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	s = strings.Replace(s, "e", "E", 1)
	if f >= 0 {
		return " " + s
	}
	return s
}

// ParseValPrefix implements VAL's lenient numeric parse: skip leading
// whitespace, then read an optional sign and a float literal (digits,
// an optional decimal point, an optional E exponent), stopping at the
// first byte that doesn't fit. A string with no valid numeric prefix
// parses as 0, per spec §4.2.
func ParseValPrefix(s []byte) float64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i == digitsStart || (i == digitsStart+1 && s[digitsStart] == '.') {
		// No digits were actually consumed (just a bare sign or a bare
		// decimal point): no valid numeric prefix.
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigitsStart := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expDigitsStart {
			i = j
		}
	}
	f, err := strconv.ParseFloat(string(s[start:i]), 64)
	if err != nil {
		return 0
	}
	return f
}
