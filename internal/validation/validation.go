package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLen(field, value string, maxLen int, v Violations) {
	if len(value) > maxLen {
		v[field] = "too_long"
	}
}

// Checked enforces an explicit opt-in, e.g. a consent checkbox.
func Checked(field string, value bool, v Violations) {
	if !value {
		v[field] = "must_be_accepted"
	}
}

// Email is a light plausibility check, not RFC validation; delivery is the
// real verification and happens elsewhere.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	at := strings.Index(value, "@")
	if at < 1 || at == len(value)-1 || strings.ContainsAny(value, " \t") {
		v[field] = "invalid_email"
	}
}
