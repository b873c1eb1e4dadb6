package utils

import "strings"

// IsUniqueConstraint matches sqlite's duplicate-key error, used to retry
// generated link ids that collide.
func IsUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
