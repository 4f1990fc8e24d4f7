package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates with email and password and issues a JWT pair.
func (c Controller) Login(request *evo.Request) any {
	var input LoginRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return response.BadRequest("Email and password are required")
	}

	var user User
	if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return response.Unauthorized("Invalid email or password")
	}

	if !user.VerifyPassword(input.Password) {
		user.RecordLogin(request, false, "invalid password")
		return response.Unauthorized("Invalid email or password")
	}

	if user.Status == UserStatusBlocked {
		user.RecordLogin(request, false, "account blocked")
		return response.Forbidden("Account is blocked")
	}

	accessToken, err := user.GenerateJWT()
	if err != nil {
		log.Error("Failed to generate JWT: %v", err)
		return response.InternalError("Failed to generate token")
	}

	refreshToken, err := user.GenerateRefreshToken()
	if err != nil {
		log.Error("Failed to generate refresh token: %v", err)
		return response.InternalError("Failed to generate token")
	}

	user.RecordLogin(request, true, "")

	return response.OK(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    24 * 3600,
		User:         user.sanitized(),
	})
}

// Refresh exchanges a valid refresh token for a fresh JWT pair.
func (c Controller) Refresh(request *evo.Request) any {
	var input RefreshRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	claims, err := parseToken(input.RefreshToken)
	if err != nil {
		return response.ErrInvalidToken.Response()
	}

	var user User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return response.ErrInvalidToken.Response()
	}

	if user.Status == UserStatusBlocked {
		return response.Forbidden("Account is blocked")
	}

	accessToken, err := user.GenerateJWT()
	if err != nil {
		return response.InternalError("Failed to generate token")
	}

	refreshToken, err := user.GenerateRefreshToken()
	if err != nil {
		return response.InternalError("Failed to generate token")
	}

	return response.OK(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    24 * 3600,
		User:         user.sanitized(),
	})
}

// GetProfile returns the authenticated user's profile.
func (c Controller) GetProfile(request *evo.Request) any {
	user := RequestUser(request)
	if user == nil {
		return response.Unauthorized("Authentication required")
	}
	return response.OK(map[string]any{
		"user":        user.sanitized(),
		"full_access": HasFullAccess(user),
		"read_only":   IsReadOnly(user),
		"has_api_key": user.APIKey != nil,
	})
}

type ProfileUpdateRequest struct {
	Name        *string `json:"name"`
	LastName    *string `json:"last_name"`
	DisplayName *string `json:"display_name"`
	Password    *string `json:"password"`
}

// EditProfile updates the authenticated user's own profile fields.
func (c Controller) EditProfile(request *evo.Request) any {
	user := RequestUser(request)
	if user == nil {
		return response.Unauthorized("Authentication required")
	}

	var input ProfileUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return response.BadRequest("Password must be at least 8 characters")
		}
		if err := user.SetPassword(*input.Password); err != nil {
			return response.InternalError("Failed to set password")
		}
	}

	if err := db.Save(user).Error; err != nil {
		return response.HandleDBError(err, "user")
	}

	return response.OKWithMessage(user.sanitized(), "Profile updated")
}

// GenerateAPIKey issues a new API key for the authenticated user, replacing
// any existing one.
func (c Controller) GenerateAPIKey(request *evo.Request) any {
	user := RequestUser(request)
	if user == nil {
		return response.Unauthorized("Authentication required")
	}

	apiKey, err := user.GenerateAPIKey()
	if err != nil {
		return response.InternalError("Failed to generate API key")
	}

	if err := db.Save(user).Error; err != nil {
		return response.HandleDBError(err, "user")
	}

	return response.OKWithMessage(map[string]any{"api_key": apiKey}, "API key generated. Store it now; it will not be shown again.")
}

// RevokeAPIKey removes the authenticated user's API key.
func (c Controller) RevokeAPIKey(request *evo.Request) any {
	user := RequestUser(request)
	if user == nil {
		return response.Unauthorized("Authentication required")
	}

	user.ClearAPIKey()
	if err := db.Model(user).Update("api_key", nil).Error; err != nil {
		return response.HandleDBError(err, "user")
	}

	return response.Message("API key revoked")
}

// OAuthProviders lists providers with configured credentials.
func (c Controller) OAuthProviders(request *evo.Request) any {
	return response.OK(map[string]any{"providers": OAuthEnabledProviders()})
}

// OAuthLogin redirects the browser to the provider's consent page.
func (c Controller) OAuthLogin(request *evo.Request) any {
	provider := request.Param("provider").String()
	config, err := oauthConfig(provider)
	if err != nil {
		return response.BadRequest("Unsupported OAuth provider")
	}
	if config.ClientID == "" {
		return response.BadRequest(fmt.Sprintf("OAuth provider %s is not configured", provider))
	}

	state := uuid.NewString()
	url := config.AuthCodeURL(state)
	request.Redirect(url)
	return nil
}

// OAuthCallback handles the provider redirect: exchanges the code, looks up
// the user by email and issues a JWT pair. Unknown emails are rejected; user
// accounts are provisioned by an administrator, never on first login.
func (c Controller) OAuthCallback(request *evo.Request) any {
	provider := request.Param("provider").String()
	code := request.Query("code").String()
	if code == "" {
		return response.BadRequest("Missing authorization code")
	}

	info, err := fetchOAuthUserInfo(context.Background(), provider, code)
	if err != nil {
		log.Error("OAuth callback failed for %s: %v", provider, err)
		return response.Unauthorized("OAuth authentication failed")
	}

	var user User
	if err := db.Where("email = ?", strings.ToLower(info.Email)).First(&user).Error; err != nil {
		return response.Forbidden("No account exists for this email. Ask an administrator to create one.")
	}

	if user.Status == UserStatusBlocked {
		user.RecordLogin(request, false, "account blocked")
		return response.Forbidden("Account is blocked")
	}

	accessToken, err := user.GenerateJWT()
	if err != nil {
		return response.InternalError("Failed to generate token")
	}
	refreshToken, err := user.GenerateRefreshToken()
	if err != nil {
		return response.InternalError("Failed to generate token")
	}

	user.RecordLogin(request, true, "oauth:"+provider)

	return response.OK(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    24 * 3600,
		User:         user.sanitized(),
	})
}

// ----- user management (administrators only) -----

type UserCreateRequest struct {
	Name       string  `json:"name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Type       string  `json:"type"`
	Department string  `json:"department"`
	OtherRole  *string `json:"other_role"`
	EmployeeID *string `json:"employee_id"`
}

type UserUpdateRequest struct {
	Name       *string `json:"name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Type       *string `json:"type"`
	Department *string `json:"department"`
	OtherRole  *string `json:"other_role"`
	Status     *string `json:"status"`
}

// ListUsers returns users with pagination and optional filters.
func (c Controller) ListUsers(request *evo.Request) any {
	query := db.Model(&User{})

	if dept := request.Query("department").String(); dept != "" {
		query = query.Where("department = ?", dept)
	}
	if status := request.Query("status").String(); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := request.Query("search").String(); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var users []User
	p, err := pagination.New(query.Order("name, last_name"), request, &users, pagination.Options{MaxSize: 100})
	if err != nil {
		return response.HandlePaginationError(err)
	}

	for i := range users {
		users[i].PasswordHash = nil
		users[i].APIKey = nil
	}

	return response.OKWithMeta(users, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// CreateUser provisions a new account.
func (c Controller) CreateUser(request *evo.Request) any {
	var input UserCreateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Name == "" {
		return response.BadRequest("Name and email are required")
	}
	if input.Type == "" {
		input.Type = UserTypePlanner
	}
	if input.Type != UserTypePlanner && input.Type != UserTypeAdministrator {
		return response.BadRequest("Type must be planner or administrator")
	}
	if input.Department == "" {
		input.Department = UserDepartmentOther
	}

	user := User{
		Name:       input.Name,
		LastName:   input.LastName,
		Email:      input.Email,
		Type:       input.Type,
		Department: input.Department,
		OtherRole:  input.OtherRole,
		Status:     UserStatusActive,
	}

	if input.EmployeeID != nil && *input.EmployeeID != "" {
		employeeID, err := uuid.Parse(*input.EmployeeID)
		if err != nil {
			return response.BadRequest("Invalid employee_id")
		}
		user.EmployeeID = &employeeID
	}

	if input.Password != "" {
		if len(input.Password) < 8 {
			return response.BadRequest("Password must be at least 8 characters")
		}
		if err := user.SetPassword(input.Password); err != nil {
			return response.InternalError("Failed to set password")
		}
	}

	if err := db.Create(&user).Error; err != nil {
		return response.HandleDBError(err, "user")
	}

	return response.Created(user.sanitized())
}

// UpdateUser modifies an existing account.
func (c Controller) UpdateUser(request *evo.Request) any {
	user, errResp := findUser(request)
	if errResp != nil {
		return *errResp
	}

	var input UserUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*input.Email))
	}
	if input.Type != nil {
		if *input.Type != UserTypePlanner && *input.Type != UserTypeAdministrator {
			return response.BadRequest("Type must be planner or administrator")
		}
		user.Type = *input.Type
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.OtherRole != nil {
		user.OtherRole = input.OtherRole
	}
	if input.Status != nil {
		if *input.Status != UserStatusActive && *input.Status != UserStatusBlocked {
			return response.BadRequest("Status must be active or blocked")
		}
		user.Status = *input.Status
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return response.BadRequest("Password must be at least 8 characters")
		}
		if err := user.SetPassword(*input.Password); err != nil {
			return response.InternalError("Failed to set password")
		}
	}

	if err := db.Save(user).Error; err != nil {
		return response.HandleDBError(err, "user")
	}

	return response.OKWithMessage(user.sanitized(), "User updated")
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (c Controller) DeleteUser(request *evo.Request) any {
	user, errResp := findUser(request)
	if errResp != nil {
		return *errResp
	}

	actor := RequestUser(request)
	if actor != nil && actor.UserID == user.UserID {
		return response.BadRequest("You cannot delete your own account")
	}

	if err := db.Delete(user).Error; err != nil {
		return response.HandleDBError(err, "user")
	}

	return response.Message("User deleted")
}

// BlockUser sets the account status to blocked.
func (c Controller) BlockUser(request *evo.Request) any {
	return c.setUserStatus(request, UserStatusBlocked, "User blocked")
}

// UnblockUser sets the account status back to active.
func (c Controller) UnblockUser(request *evo.Request) any {
	return c.setUserStatus(request, UserStatusActive, "User unblocked")
}

func (c Controller) setUserStatus(request *evo.Request, status, message string) any {
	user, errResp := findUser(request)
	if errResp != nil {
		return *errResp
	}

	actor := RequestUser(request)
	if actor != nil && actor.UserID == user.UserID && status == UserStatusBlocked {
		return response.BadRequest("You cannot block your own account")
	}

	user.Status = status
	if err := db.Save(user).Error; err != nil {
		return response.HandleDBError(err, "user")
	}
	return response.Message(message)
}

// LoginHistory returns recent login attempts for one account.
func (c Controller) LoginHistory(request *evo.Request) any {
	user, errResp := findUser(request)
	if errResp != nil {
		return *errResp
	}

	var history []UserLoginHistory
	if err := db.Where("user_id = ?", user.UserID).Order("login_at DESC").Limit(100).Find(&history).Error; err != nil {
		return response.HandleDBError(err, "login history")
	}

	return response.List(history, len(history))
}

func findUser(request *evo.Request) (*User, *any) {
	id, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		resp := any(response.BadRequest("Invalid user id"))
		return nil, &resp
	}

	var user User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			resp := any(response.NotFound("User not found"))
			return nil, &resp
		}
		resp := any(response.HandleDBError(err, "user"))
		return nil, &resp
	}
	return &user, nil
}

// sanitized returns a copy of the user without credential material.
func (u *User) sanitized() *User {
	clone := *u
	clone.PasswordHash = nil
	clone.APIKey = nil
	return &clone
}
