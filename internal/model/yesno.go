package model

import "strings"

// ParseYesNo converts the free-text yes/no answers stored by the survey
// forms into a bool. Unrecognized or empty text yields nil.
func ParseYesNo(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sí", "si", "s", "yes", "y", "true", "1":
		v = true
	case "no", "n", "false", "0":
		v = false
	default:
		return nil
	}
	return &v
}

// IsYes reports whether b is set and true.
func IsYes(b *bool) bool {
	return b != nil && *b
}
