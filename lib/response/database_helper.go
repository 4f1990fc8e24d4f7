package response

import (
	"errors"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/outcome"
	"gorm.io/gorm"
)

// HandleDBError maps a database error to a consistent API response.
// The context names the entity being accessed and is used for logging
// and the not-found message.
func HandleDBError(err error, context string) any {
	if err == nil {
		return nil
	}

	log.Error("Database error on %s: %v", context, err)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Requested " + context + " not found")
	}

	return ErrDatabaseError.Response()
}

// HandleDBErrorWithDetails behaves like HandleDBError but carries the
// raw error text in the response details.
func HandleDBErrorWithDetails(err error, context string) any {
	if err == nil {
		return nil
	}

	log.Error("Database error on %s: %v", context, err)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Error(NewErrorWithDetails(ErrorCodeNotFound, "Requested "+context+" not found", 404, "Resource not found"))
	}

	return Error(NewErrorWithDetails(ErrorCodeDatabaseError, "Database operation failed", 500, err.Error()))
}

// HandlePaginationError maps pagination failures to an API response
func HandlePaginationError(err error) outcome.Response {
	log.Error("Pagination error: %v", err)
	return ErrDatabaseError.Response()
}
