package auth

import (
	"testing"

	"github.com/getevo/evo/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// The auth gates are registered through evo.Use, which only accepts the
// error-returning middleware shape.
var (
	_ evo.Middleware = RequireUser
	_ evo.Middleware = RequireAdmin
	_ evo.Middleware = RequireWriter
)

func testUser(userType, department string, otherRole *string) *User {
	return &User{
		UserID:     uuid.New(),
		Type:       userType,
		Department: department,
		OtherRole:  otherRole,
		Status:     UserStatusActive,
	}
}

func strPtr(s string) *string { return &s }

func TestHasFullAccess(t *testing.T) {
	assert.True(t, HasFullAccess(testUser(UserTypeAdministrator, "HD", nil)))
	assert.True(t, HasFullAccess(testUser(UserTypePlanner, "PM", nil)))
	assert.True(t, HasFullAccess(testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleBusinessIntel))))

	assert.False(t, HasFullAccess(testUser(UserTypePlanner, "HD", nil)))
	assert.False(t, HasFullAccess(testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleReadOnly))))
	assert.False(t, HasFullAccess(testUser(UserTypePlanner, UserDepartmentOther, nil)))
	assert.False(t, HasFullAccess(nil))
	assert.False(t, HasFullAccess(&User{}), "anonymous user has no access")
}

func TestIsReadOnly(t *testing.T) {
	assert.True(t, IsReadOnly(testUser(UserTypePlanner, UserDepartmentOther, nil)))
	assert.True(t, IsReadOnly(testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleReadOnly))))
	assert.True(t, IsReadOnly(nil))

	assert.False(t, IsReadOnly(testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleBusinessIntel))))
	assert.False(t, IsReadOnly(testUser(UserTypePlanner, "MED", nil)))
	assert.False(t, IsReadOnly(testUser(UserTypeAdministrator, "PM", nil)))
}

func TestCanEditDepartment(t *testing.T) {
	// Full access edits everything
	admin := testUser(UserTypeAdministrator, "HD", nil)
	for _, dept := range []string{"PM", "MED", "HD", "MFG", "BUILD", "PRG"} {
		assert.True(t, CanEditDepartment(admin, dept))
	}

	// Planners edit their own department only
	hd := testUser(UserTypePlanner, "HD", nil)
	assert.True(t, CanEditDepartment(hd, "HD"))
	assert.False(t, CanEditDepartment(hd, "MED"))
	assert.False(t, CanEditDepartment(hd, "BUILD"))

	// BUILD and MFG planners share each other's boards
	build := testUser(UserTypePlanner, "BUILD", nil)
	mfg := testUser(UserTypePlanner, "MFG", nil)
	assert.True(t, CanEditDepartment(build, "MFG"))
	assert.True(t, CanEditDepartment(mfg, "BUILD"))
	assert.False(t, CanEditDepartment(build, "HD"))

	// Read-only users edit nothing, not even a matching department string
	readonly := testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleReadOnly))
	assert.False(t, CanEditDepartment(readonly, UserDepartmentOther))
	assert.False(t, CanEditDepartment(readonly, "HD"))

	// Business intelligence edits everything despite being outside planning
	bi := testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleBusinessIntel))
	assert.True(t, CanEditDepartment(bi, "PRG"))
}

func TestCanViewHiddenProjects(t *testing.T) {
	assert.True(t, CanViewHiddenProjects(testUser(UserTypeAdministrator, "HD", nil)))
	assert.True(t, CanViewHiddenProjects(testUser(UserTypePlanner, "PM", nil)))
	assert.True(t, CanViewHiddenProjects(testUser(UserTypePlanner, UserDepartmentOther, strPtr(OtherRoleBusinessIntel))))

	assert.False(t, CanViewHiddenProjects(testUser(UserTypePlanner, "HD", nil)))
	assert.False(t, CanViewHiddenProjects(nil))
}
