// Package currency converts world-lock amounts between a single signed
// unit count and the three lock denominations (wl, dl, bgl) and formats
// values and ranges for the price table.
package currency

import (
	"fmt"
	"strconv"
)

// Denomination ratios relative to one wl.
const (
	WLsPerDL  = 100
	WLsPerBGL = 10_000
)

// ZeroMarker is emitted when every denomination is zero.
const ZeroMarker = "±0"

// RangeMarker prefixes a formatted range.
const RangeMarker = "~"

// Value is a price in wls. Max is nil for an exact price; when set, the
// price is the min..max range.
type Value struct {
	Min int
	Max *int
}

// Exact wraps a single wl amount.
func Exact(wls int) Value {
	return Value{Min: wls}
}

// Range wraps a min..max wl range.
func Range(min, max int) Value {
	return Value{Min: min, Max: &max}
}

// Locks carries the icon references substituted into formatted prices.
// Callers decide what a reference is (a data URI, a file name, a plain
// label); the formatter only splices it in.
type Locks struct {
	WL  string
	DL  string
	BGL string
}

// Part is one formatted segment: a denomination count with its lock
// icon, or plain text (the range marker, the zero marker) when Icon is
// empty. Icon is one of "wl", "dl", "bgl".
type Part struct {
	Text string
	Icon string
}

// Denominations splits a wl amount into whole bgls, dls and leftover
// wls. Division truncates toward zero, so for negative input every
// non-zero component is negative; the tiers never disagree on sign.
func Denominations(wls int) (bgl, dl, wl int) {
	bgl = wls / WLsPerBGL
	wls %= WLsPerBGL
	dl = wls / WLsPerDL
	wl = wls % WLsPerDL
	return bgl, dl, wl
}

// Parts breaks a value into display segments, highest denomination
// first, skipping zero tiers. A range is displayed as its midpoint
// behind the range marker. A malformed range (min above max) collapses
// to the exact min, marker and all. An all-zero value yields the single
// zero-marker part.
func Parts(v Value) []Part {
	wls, ranged := displayWLs(v)

	var parts []Part
	if ranged {
		parts = append(parts, Part{Text: RangeMarker})
	}

	bgl, dl, wl := Denominations(wls)
	if bgl != 0 {
		parts = append(parts, Part{Text: strconv.Itoa(bgl), Icon: "bgl"})
	}
	if dl != 0 {
		parts = append(parts, Part{Text: strconv.Itoa(dl), Icon: "dl"})
	}
	if wl != 0 {
		parts = append(parts, Part{Text: strconv.Itoa(wl), Icon: "wl"})
	}

	if len(parts) == 0 || (ranged && len(parts) == 1) {
		parts = append(parts, Part{Text: ZeroMarker})
	}

	return parts
}

// Format renders a value into the markup consumed by the table
// template, e.g. `<p>1</p> <img src="bgl" /><p>23</p> <img src="dl" />`.
func Format(v Value, locks Locks) string {
	var s string
	for _, part := range Parts(v) {
		if part.Icon == "" {
			s += part.Text
			continue
		}
		s += fmt.Sprintf(`<p>%s</p> <img src="%s" />`, part.Text, locks.icon(part.Icon))
	}
	return s
}

func (l Locks) icon(tier string) string {
	switch tier {
	case "bgl":
		return l.BGL
	case "dl":
		return l.DL
	default:
		return l.WL
	}
}

// displayWLs picks the single wl amount a value is displayed as: the
// exact amount, or the truncated midpoint of a range. Ranges where min
// exceeds max are treated as exact values; callers should never build
// one, but the formatter must not emit a negative-width range.
func displayWLs(v Value) (wls int, ranged bool) {
	if v.Max == nil || *v.Max == v.Min {
		return v.Min, false
	}
	if v.Min > *v.Max {
		return v.Min, false
	}
	return v.Min + (*v.Max-v.Min)/2, true
}
