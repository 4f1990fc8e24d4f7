package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getevo/evo/v2/lib/outcome"
	"github.com/getevo/evo/v2/lib/text"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Authentication & Authorization errors
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeForbidden    ErrorCode = "forbidden"
	ErrorCodeInvalidToken ErrorCode = "invalid_token"

	// Input validation errors
	ErrorCodeInvalidInput      ErrorCode = "invalid_input"
	ErrorCodeInvalidProjectID  ErrorCode = "invalid_project_id"
	ErrorCodeInvalidEmployeeID ErrorCode = "invalid_employee_id"
	ErrorCodeInvalidDepartment ErrorCode = "invalid_department"
	ErrorCodeInvalidDate       ErrorCode = "invalid_date"
	ErrorCodeMissingRequired   ErrorCode = "missing_required"

	// Resource errors
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeProjectNotFound    ErrorCode = "project_not_found"
	ErrorCodeEmployeeNotFound   ErrorCode = "employee_not_found"
	ErrorCodeAssignmentNotFound ErrorCode = "assignment_not_found"
	ErrorCodeUserNotFound       ErrorCode = "user_not_found"

	// Permission errors
	ErrorCodeAccessDenied       ErrorCode = "access_denied"
	ErrorCodeDepartmentReadOnly ErrorCode = "department_read_only"

	// Internal errors
	ErrorCodeInternalError   ErrorCode = "internal_error"
	ErrorCodeDatabaseError   ErrorCode = "database_error"
	ErrorCodeValidationError ErrorCode = "validation_error"
	ErrorCodeConflict        ErrorCode = "conflict"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode `json:"error"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Details    string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Response returns an outcome.Response for the error
func (e AppError) Response() outcome.Response {
	return outcome.Response{
		StatusCode: e.StatusCode,
		Data: text.ToJSON(map[string]interface{}{
			"error":   string(e.Code),
			"message": e.Message,
		}),
	}
}

// NewError creates a new AppError
func NewError(code ErrorCode, message string, statusCode int) AppError {
	return AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewErrorWithDetails creates a new AppError with additional details
func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details string) AppError {
	return AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Predefined common errors
var (
	ErrUnauthorized = AppError{
		Code:       ErrorCodeUnauthorized,
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = AppError{
		Code:       ErrorCodeForbidden,
		Message:    "You do not have permission to access this endpoint",
		StatusCode: http.StatusForbidden,
	}

	ErrInvalidToken = AppError{
		Code:       ErrorCodeInvalidToken,
		Message:    "Invalid or expired token",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidInput = AppError{
		Code:       ErrorCodeInvalidInput,
		Message:    "Invalid request data",
		StatusCode: http.StatusBadRequest,
	}

	ErrInvalidProjectID = AppError{
		Code:       ErrorCodeInvalidProjectID,
		Message:    "Invalid project ID",
		StatusCode: http.StatusBadRequest,
	}

	ErrInvalidEmployeeID = AppError{
		Code:       ErrorCodeInvalidEmployeeID,
		Message:    "Invalid employee ID format",
		StatusCode: http.StatusBadRequest,
	}

	ErrInvalidDepartment = AppError{
		Code:       ErrorCodeInvalidDepartment,
		Message:    "Unknown department code",
		StatusCode: http.StatusBadRequest,
	}

	ErrInvalidDate = AppError{
		Code:       ErrorCodeInvalidDate,
		Message:    "Dates must use the YYYY-MM-DD format",
		StatusCode: http.StatusBadRequest,
	}

	ErrMissingRequired = AppError{
		Code:       ErrorCodeMissingRequired,
		Message:    "Missing required fields",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = AppError{
		Code:       ErrorCodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrProjectNotFound = AppError{
		Code:       ErrorCodeProjectNotFound,
		Message:    "Project not found",
		StatusCode: http.StatusNotFound,
	}

	ErrEmployeeNotFound = AppError{
		Code:       ErrorCodeEmployeeNotFound,
		Message:    "Employee not found",
		StatusCode: http.StatusNotFound,
	}

	ErrAssignmentNotFound = AppError{
		Code:       ErrorCodeAssignmentNotFound,
		Message:    "Assignment not found",
		StatusCode: http.StatusNotFound,
	}

	ErrUserNotFound = AppError{
		Code:       ErrorCodeUserNotFound,
		Message:    "User not found",
		StatusCode: http.StatusNotFound,
	}

	ErrAccessDenied = AppError{
		Code:       ErrorCodeAccessDenied,
		Message:    "Access denied to this resource",
		StatusCode: http.StatusForbidden,
	}

	ErrDepartmentReadOnly = AppError{
		Code:       ErrorCodeDepartmentReadOnly,
		Message:    "Your account does not allow editing this department",
		StatusCode: http.StatusForbidden,
	}

	ErrInternalError = AppError{
		Code:       ErrorCodeInternalError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrDatabaseError = AppError{
		Code:       ErrorCodeDatabaseError,
		Message:    "Database operation failed",
		StatusCode: http.StatusInternalServerError,
	}
)

// Specific error constructors for common scenarios
func ErrFetchAssignments() AppError {
	return NewError(ErrorCodeInternalError, "Failed to fetch assignments", http.StatusInternalServerError)
}

func ErrCreateAssignments() AppError {
	return NewError(ErrorCodeInternalError, "Failed to create assignments", http.StatusInternalServerError)
}

func ErrCreateProject() AppError {
	return NewError(ErrorCodeInternalError, "Failed to create project", http.StatusInternalServerError)
}

func ErrUpdateProject() AppError {
	return NewError(ErrorCodeInternalError, "Failed to update project", http.StatusInternalServerError)
}

func ErrDuplicateStage(department string) AppError {
	return NewErrorWithDetails(
		ErrorCodeConflict,
		"Department stage already exists for this project",
		http.StatusConflict,
		fmt.Sprintf("Department: %s", department),
	)
}

func ErrMissingWeekOrDepartment() AppError {
	return NewError(ErrorCodeInvalidInput, "Either week_start_date or department must be provided", http.StatusBadRequest)
}

// Helper function to create outcome.Response from AppError
func Error(err AppError) outcome.Response {
	return err.Response()
}

// =====================================================
// STANDARDIZED SUCCESS RESPONSE SYSTEM
// =====================================================

// APIResponse represents a standardized API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (r APIResponse) ToJSON() []byte {
	b, _ := json.Marshal(r)
	return b
}

// Meta contains metadata for API responses
type Meta struct {
	// Pagination
	Page       int   `json:"page,omitempty"`
	Limit      int   `json:"limit,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`

	// List/Collection metadata
	Count  int `json:"count,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Custom metadata
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// OK creates a standardized success response
func OK(data interface{}) outcome.Response {
	return outcome.Response{
		ContentType: "application/json",
		StatusCode:  http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
		}.ToJSON(),
	}
}

// OKWithMessage creates a success response with a message
func OKWithMessage(data interface{}, message string) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
			Message: message,
		}.ToJSON(),
	}
}

// OKWithMeta creates a success response with metadata
func OKWithMeta(data interface{}, meta *Meta) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
			Meta:    meta,
		}.ToJSON(),
	}
}

// Created creates a 201 Created response
func Created(data interface{}) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusCreated,
		Data: APIResponse{
			Success: true,
			Data:    data,
		}.ToJSON(),
	}
}

// List creates a response carrying a collection and its count
func List(data interface{}, count int) outcome.Response {
	return OKWithMeta(data, &Meta{Count: count})
}

// Message creates a data-less success response
func Message(message string) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Message: message,
		}.ToJSON(),
	}
}

func Unauthorized(message string) outcome.Response {
	return Error(NewError(ErrorCodeUnauthorized, message, http.StatusUnauthorized))
}

func Forbidden(message string) outcome.Response {
	return Error(NewError(ErrorCodeForbidden, message, http.StatusForbidden))
}

func BadRequest(message string) outcome.Response {
	return Error(NewError(ErrorCodeInvalidInput, message, http.StatusBadRequest))
}

func NotFound(message string) outcome.Response {
	return Error(NewError(ErrorCodeNotFound, message, http.StatusNotFound))
}

func InternalError(message string) outcome.Response {
	return Error(NewError(ErrorCodeInternalError, message, http.StatusInternalServerError))
}
