package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// europeanNumberRe matches thousands-dot + comma-decimal tokens such as
	// "1.234,56" or "-12.345.678,9". A single dot group without a comma is
	// ambiguous with a plain dot-decimal price ("154.123"), so the rewrite
	// additionally requires a comma or a second thousands group.
	europeanNumberRe = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$`)
	numberJunkRe     = regexp.MustCompile(`[^0-9.\-]`)
	symbolShapeRe    = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	letterRe         = regexp.MustCompile(`[A-Za-z]`)
)

// ParseNumber converts a locale-tolerant numeric token to a float64.
// The European-format check must run before generic comma stripping, or
// "1.234,56" would be mangled into 1.23456.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if europeanNumberRe.MatchString(s) && (strings.Contains(s, ",") || strings.Count(s, ".") > 1) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	s = numberJunkRe.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseVolume handles volume cells that encode partial fills as
// "closed/opened" (e.g. "0.10/1.00"): only the closed part matters.
func ParseVolume(raw string) (float64, bool) {
	s := raw
	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	return ParseNumber(s)
}

// dealDateLayouts covers the timestamp formats observed across broker
// exports; MT4/MT5 use dotted dates, XML exports tend towards ISO.
var dealDateLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"02-01-2006 15:04",
	"02-01-2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

// ParseDate attempts a calendar/time parse of the raw text. It never
// returns an error; unparseable input reports ok=false.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dealDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDirection maps a free-form type token to "buy" or "sell".
// Unrecognized tokens default to "buy"; extractors are expected to gate
// rows through LooksLikeDirection first so this default only applies to
// sources that omit a usable type field entirely.
func NormalizeDirection(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "sell"), strings.Contains(s, "short"), s == "1":
		return "sell"
	case strings.Contains(s, "buy"), strings.Contains(s, "long"), s == "0":
		return "buy"
	default:
		return "buy"
	}
}

// LooksLikeDirection reports whether the token matches any recognized
// direction pattern. Numeric type codes 0/1 are MT-style enumerations.
func LooksLikeDirection(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "0" || s == "1" {
		return true
	}
	for _, kw := range []string{"buy", "sell", "long", "short"} {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// IsPlausibleSymbol rejects tokens that cannot be instrument symbols:
// numeric-only tokens are usually row/ticket IDs, and most header labels
// fail the character-class check.
func IsPlausibleSymbol(token string) bool {
	s := CleanSymbol(token)
	if len(s) < 2 || len(s) > 20 {
		return false
	}
	return symbolShapeRe.MatchString(s) && letterRe.MatchString(s)
}

// CleanSymbol strips whitespace and the "#" prefix some platforms put on
// instrument names.
func CleanSymbol(token string) string {
	s := strings.Join(strings.Fields(token), "")
	return strings.ReplaceAll(s, "#", "")
}
