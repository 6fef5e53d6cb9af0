package utils

import (
	"errors"
	"gorm.io/gorm"
	"strings"
)

// IsDuplicateKey reports a unique-constraint violation from postgres or sqlite,
// whether or not the dialector translated it.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}
