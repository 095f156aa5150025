package rdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/warp/erp-engine/generic"
	"gorm.io/gorm"
)

// translate maps driver errors onto the generic kinds. Anything it does not
// recognise is wrapped and surfaces as an internal error.
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return generic.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return generic.Conflict("%s violates a unique constraint", entity)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// isUniqueViolation catches drivers whose errors gorm does not translate.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
