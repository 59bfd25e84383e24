package httputil

import "strconv"

// ParseIntParam parses an integer query parameter with a default value.
// Returns defaultVal if the parameter is empty or invalid.
func ParseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultVal
}

// ParseFloatParam parses a float query parameter. Returns nil when the
// parameter is empty or invalid, so callers can distinguish "absent" from
// a real bound.
func ParseFloatParam(s string) *float64 {
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return &v
	}
	return nil
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(s string, defaultVal bool) bool {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return defaultVal
}
