package auth

import (
	"net/http"

	"github.com/getevo/evo/v2"

	"github.com/teamcapacity/capacity-backend/lib/response"
)

// HasFullAccess reports whether the user may read and edit every department.
// Administrators, PM department members and business-intelligence users
// qualify.
func HasFullAccess(user *User) bool {
	if user == nil || user.Anonymous() {
		return false
	}
	if user.Type == UserTypeAdministrator {
		return true
	}
	if user.Department == "PM" {
		return true
	}
	if user.Department == UserDepartmentOther && user.OtherRole != nil && *user.OtherRole == OtherRoleBusinessIntel {
		return true
	}
	return false
}

// IsReadOnly reports whether the user may not modify planning data at all.
// Users outside the six planning departments are read-only unless they hold
// the business-intelligence role.
func IsReadOnly(user *User) bool {
	if user == nil || user.Anonymous() {
		return true
	}
	if user.Department != UserDepartmentOther {
		return false
	}
	return user.OtherRole == nil || *user.OtherRole != OtherRoleBusinessIntel
}

// CanEditDepartment reports whether the user may modify assignments and
// stage data belonging to the given department. Members edit their own
// department; BUILD and MFG can edit each other's data since those teams
// share planners.
func CanEditDepartment(user *User, department string) bool {
	if HasFullAccess(user) {
		return true
	}
	if IsReadOnly(user) {
		return false
	}
	if user.Department == department {
		return true
	}
	if (user.Department == "BUILD" || user.Department == "MFG") &&
		(department == "BUILD" || department == "MFG") {
		return true
	}
	return false
}

// CanViewHiddenProjects reports whether the user may list soft-hidden
// projects and their assignments.
func CanViewHiddenProjects(user *User) bool {
	return HasFullAccess(user)
}

// RequestUser extracts the authenticated user from the request, or nil for
// anonymous requests.
func RequestUser(request *evo.Request) *User {
	u := request.User()
	if u == nil || u.Anonymous() {
		return nil
	}
	if user, ok := u.Interface().(*User); ok {
		return user
	}
	if user, ok := u.(*User); ok {
		return user
	}
	return nil
}

// RequireUser middleware rejects unauthenticated or blocked users.
func RequireUser(request *evo.Request) error {
	user := RequestUser(request)
	if user == nil {
		return response.ErrUnauthorized
	}
	if user.Status == UserStatusBlocked {
		return response.NewError(response.ErrorCodeForbidden, "Account is blocked", http.StatusForbidden)
	}
	return request.Next()
}

// RequireAdmin middleware rejects everyone except administrators.
func RequireAdmin(request *evo.Request) error {
	user := RequestUser(request)
	if user == nil {
		return response.ErrUnauthorized
	}
	if user.Type != UserTypeAdministrator {
		return response.ErrForbidden
	}
	return request.Next()
}

// RequireWriter middleware rejects read-only users on mutating routes.
func RequireWriter(request *evo.Request) error {
	user := RequestUser(request)
	if user == nil {
		return response.ErrUnauthorized
	}
	if IsReadOnly(user) {
		return response.ErrDepartmentReadOnly
	}
	return request.Next()
}
