package ixbrl

import (
	"math"
	"strconv"
	"strings"
)

// parseFactValue turns one inline fact into a number, honoring the iXBRL
// presentation attributes. A nil return means the fact is unusable, never
// that the value is zero.
//
// Precedence: an explicit numeric scale attribute beats any textual
// format hint. The sign attribute negates independently of parentheses
// in the displayed text.
func parseFactValue(text, sign, scaleAttr, format string) *float64 {
	val := parseNumericText(text)
	if val == nil {
		return nil
	}
	v := *val
	if sign == "-" {
		v = -v
	}
	if factor, ok := scaleFromAttr(scaleAttr); ok {
		v *= factor
	} else {
		v *= scaleFromFormat(format)
	}
	return &v
}

// parseNumericText parses the displayed text of a fact. Currency and
// percent symbols, commas and whitespace are presentation noise;
// surrounding parentheses mean negative. Anything that still fails to
// parse (dashes, dates, prose) yields nil.
func parseNumericText(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" {
		return nil
	}

	// Remove common formatting
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\t", "")

	// Handle parentheses for negative
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.Trim(s, "()")
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if isNegative {
		val = -val
	}
	return &val
}

// scaleFromAttr interprets the scale attribute as a power of ten.
func scaleFromAttr(attr string) (float64, bool) {
	if attr == "" {
		return 1, false
	}
	exp, err := strconv.Atoi(strings.TrimSpace(attr))
	if err != nil {
		return 1, false
	}
	return math.Pow10(exp), true
}

// scaleFromFormat analyzes a textual format hint for unit multipliers,
// case-insensitive.
func scaleFromFormat(format string) float64 {
	text := strings.ToLower(format)

	if strings.Contains(text, "million") {
		return 1000000.0
	}
	if strings.Contains(text, "thousand") {
		return 1000.0
	}
	if strings.Contains(text, "billion") {
		return 1000000000.0
	}
	return 1.0
}
