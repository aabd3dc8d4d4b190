package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// InternalNumberPrefix starts every generated internal bottle number.
const InternalNumberPrefix = "WM"

var internalNumberRe = regexp.MustCompile(`(?i)^\s*(?:WM)?\s*[-#]?\s*(\d{1,9})\s*$`)

// FormatInternalNumber renders a sequence number as WM-000042.
func FormatInternalNumber(seq int64) string {
	return fmt.Sprintf("%s-%06d", InternalNumberPrefix, seq)
}

// ParseInternalNumber accepts the spellings operators type at the counter
// ("WM-000042", "wm 42", "42") and returns the sequence number.
func ParseInternalNumber(raw string) (int64, error) {
	m := internalNumberRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("unable to parse internal number: %q", raw)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unable to parse internal number: %q", raw)
	}
	return n, nil
}

// NormalizeInternalNumber returns the canonical form of a user supplied
// internal number. Numbers that do not follow the WM scheme are kept as
// typed, upper-cased and trimmed.
func NormalizeInternalNumber(raw string) string {
	if n, err := ParseInternalNumber(raw); err == nil {
		return FormatInternalNumber(n)
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}
