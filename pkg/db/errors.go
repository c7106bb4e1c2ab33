package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// violation. A provided constraintName is matched first; drivers that report
// column names instead of constraint names (sqlite) fall through to the
// generic markers.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
