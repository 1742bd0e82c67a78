package eval

import "strconv"

// parseFloatBASIC converts the exact digit run the numeric-literal
// scanner already validated into a float64. A malformed leftover (a bare
// "." with no digits at all, which the scanner still allows through)
// parses as 0.
func parseFloatBASIC(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
