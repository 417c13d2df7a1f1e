package export

import "strings"

// FormatSeriesIndex normalizes a free-form series index string into a
// fixed-width token that sorts lexicographically in series order:
//
//	""     -> "999"
//	"3"    -> "003"
//	"34"   -> "034"
//	"345"  -> "345"
//	"3456" -> "3456"
//	"3.2"  -> "003.02"
//
// The "999" sentinel means "no series index" and sorts after any real
// three-digit index.
func FormatSeriesIndex(raw string) string {
	if raw == "" {
		return "999"
	}
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		return zeroPad(raw[:i], 3) + "." + zeroPad(raw[i+1:], 2)
	}
	return zeroPad(raw, 3)
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
