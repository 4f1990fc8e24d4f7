package response

import (
	"testing"

	"github.com/getevo/pagination"
	"github.com/stretchr/testify/assert"
)

func TestErrorCatalogStatusCodes(t *testing.T) {
	assert.Equal(t, 401, ErrUnauthorized.StatusCode)
	assert.Equal(t, 403, ErrForbidden.StatusCode)
	assert.Equal(t, 403, ErrDepartmentReadOnly.StatusCode)
	assert.Equal(t, 404, ErrNotFound.StatusCode)
	assert.Equal(t, 404, ErrProjectNotFound.StatusCode)
	assert.Equal(t, 400, ErrInvalidInput.StatusCode)
	assert.Equal(t, 400, ErrInvalidDepartment.StatusCode)
	assert.Equal(t, 500, ErrDatabaseError.StatusCode)
}

func TestNewErrorWithDetails(t *testing.T) {
	err := NewErrorWithDetails(ErrorCodeConflict, "Stage already exists", 409, "department HD")
	assert.Equal(t, ErrorCodeConflict, err.Code)
	assert.Equal(t, "Stage already exists", err.Message)
	assert.Equal(t, 409, err.StatusCode)
	assert.Equal(t, "department HD", err.Details)
	assert.Equal(t, "[conflict] Stage already exists", err.Error())
}

func TestErrDuplicateStage(t *testing.T) {
	err := ErrDuplicateStage("BUILD")
	assert.Equal(t, 409, err.StatusCode)
	assert.Contains(t, err.Details, "BUILD")
}

func TestHandleDBErrorNil(t *testing.T) {
	assert.Nil(t, HandleDBError(nil, "project"))
}

func TestMetaFromPagination(t *testing.T) {
	p := pagination.Pagination{Records: 42, CurrentPage: 2, Pages: 3, Size: 20}
	meta := Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	}
	assert.Equal(t, int64(42), meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 3, meta.TotalPages)
}
