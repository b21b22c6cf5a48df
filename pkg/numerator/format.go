package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// Format creates "PREFIX-0007" style numbers. Values wider than width are not truncated.
func Format(prefix string, width int, num int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, num)
}

// FormatCompact creates "C007" style codes (no dash).
func FormatCompact(prefix string, width int, num int64) string {
	return fmt.Sprintf("%s%0*d", prefix, width, num)
}

// Parse extracts the numeric part after the first dash ("INV-0042" -> 42).
// Returns -1 if parsing fails.
func Parse(formatted string) int64 {
	_, suffix, ok := strings.Cut(strings.TrimSpace(formatted), "-")
	if !ok {
		return -1
	}
	return parseDigits(suffix)
}

// ParseCompact extracts the numeric part of a dashless code ("W012" -> 12).
// Returns -1 if parsing fails.
func ParseCompact(formatted, prefix string) int64 {
	rest, ok := strings.CutPrefix(strings.TrimSpace(formatted), prefix)
	if !ok {
		return -1
	}
	return parseDigits(rest)
}

func parseDigits(s string) int64 {
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
