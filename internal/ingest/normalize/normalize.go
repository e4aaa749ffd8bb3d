package normalize

import (
	"strings"
)

// ParseBoolean: nil or blank → nil; true, 1 and yes (any case) → true;
// everything else → false. "no", "false" and "maybe" are indistinguishable.
func ParseBoolean(s *string) *bool {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	if v == "" {
		return nil
	}
	b := v == "true" || v == "1" || v == "yes"
	return &b
}

// Bool is ParseBoolean with nil treated as def.
func Bool(s *string, def bool) bool {
	if b := ParseBoolean(s); b != nil {
		return *b
	}
	return def
}

// NormalizeEnum uppercases s (spaces and hyphens become underscores) and looks
// it up among members. No match returns the zero value and false.
func NormalizeEnum[T ~string](s *string, members []T) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	key := strings.ToUpper(strings.TrimSpace(*s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return zero, false
	}
	for _, m := range members {
		if string(m) == key {
			return m, true
		}
	}
	return zero, false
}

// Email trims and lowercases an address.
func Email(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

// Text returns the cell value, or "" for nil.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
