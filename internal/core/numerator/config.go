package numerator

import (
	pkgnum "weavebooks/pkg/numerator"
)

// Kind describes one numbered document type.
type Kind struct {
	// Key identifies the counter record (e.g. "invoice")
	Key string

	// Prefix added to all numbers (e.g. "INV")
	Prefix string

	// Width is the zero-padded width of the numeric part
	Width int

	// Compact drops the dash between prefix and digits ("C001")
	Compact bool
}

// Format renders n in this kind's visible format.
func (k Kind) Format(n int64) string {
	if k.Compact {
		return pkgnum.FormatCompact(k.Prefix, k.Width, n)
	}
	return pkgnum.Format(k.Prefix, k.Width, n)
}

// Parse extracts the numeric part of a number of this kind.
// Returns -1 if parsing fails.
func (k Kind) Parse(formatted string) int64 {
	if k.Compact {
		return pkgnum.ParseCompact(formatted, k.Prefix)
	}
	return pkgnum.Parse(formatted)
}
