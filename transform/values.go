package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Guards over running values, used as step conditions so number, string and
// null variants of the same semantic field can take divergent paths.

// IsString reports whether v is a string.
func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsNumber reports whether v is a numeric value produced by an earlier step.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

// IsNumericString reports whether v is a string that parses as a decimal
// number.
func IsNumericString(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// IsObject reports whether v is a nested mapping.
func IsObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Trim removes surrounding whitespace from a string value.
func Trim(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

// CollapseWhitespace folds interior whitespace runs into single spaces and
// trims the result.
func CollapseWhitespace(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " ")), nil
}

// Replace returns a step body substituting all occurrences of old with new.
func Replace(old, new string) func(any) (any, error) {
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return strings.ReplaceAll(s, old, new), nil
	}
}

// RemovePattern returns a step body deleting every match of the pattern.
func RemovePattern(pattern string) func(any) (any, error) {
	re := regexp.MustCompile(pattern)
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return re.ReplaceAllString(s, ""), nil
	}
}

// ToNumber parses a string value as a decimal number.
func ToNumber(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("parse number %q: %w", s, err)
	}
	return n, nil
}

// DivideBy returns a step body dividing a numeric value by the given scale.
func DivideBy(scale float64) func(any) (any, error) {
	return func(v any) (any, error) {
		switch n := v.(type) {
		case float64:
			return n / scale, nil
		case int64:
			return float64(n) / scale, nil
		case int:
			return float64(n) / scale, nil
		}
		return nil, fmt.Errorf("expected a number, got %T", v)
	}
}

// MinorUnits converts a decimal price string into integer minor units with
// three implied decimal digits. The conversion stays in integer arithmetic
// so monetary values never suffer floating-point rounding drift.
func MinorUnits(v any) (any, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)

	whole, fraction, _ := strings.Cut(s, ".")
	if whole == "" || len(fraction) > 3 {
		return nil, fmt.Errorf("invalid price string %q", s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return nil, fmt.Errorf("invalid price string %q", s)
	}

	minor := int64(0)
	if fraction != "" {
		minor, err = strconv.ParseInt(fraction, 10, 64)
		if err != nil || minor < 0 {
			return nil, fmt.Errorf("invalid price string %q", s)
		}
		for i := len(fraction); i < 3; i++ {
			minor *= 10
		}
	}

	return units*1000 + minor, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}
