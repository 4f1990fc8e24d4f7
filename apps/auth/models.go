package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/generic"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/getevo/restify"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hlandau/passlib"
	"gorm.io/gorm"
)

// User type constants
const (
	UserTypePlanner       = "planner"
	UserTypeAdministrator = "administrator"
)

// User status constants
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// Department assignment for users who are not in one of the six planning
// departments. BI users get full access; everyone else in OTHER is read-only.
const (
	UserDepartmentOther    = "OTHER"
	OtherRoleBusinessIntel = "BUSINESS_INTELLIGENCE"
	OtherRoleReadOnly      = "READ_ONLY"
)

// OAuth provider constants (for API responses only)
const (
	OAuthProviderGoogle    = "google"
	OAuthProviderMicrosoft = "microsoft"
)

// JWT configuration
var JWTSecret []byte

// InitializeJWTSecret should be called during app initialization
func InitializeJWTSecret() {
	secret := settings.Get("JWT.SECRET").String()
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		log.Warning("JWT_SECRET not set, using development key. Change this in production!")
		secret = "your-secret-key-change-this-in-production"
	}
	JWTSecret = []byte(secret)
	log.Debug("JWT secret initialized successfully")
}

// JWT Claims structure
type Claims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

type User struct {
	UserID       uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	LastName     string    `gorm:"column:last_name;size:255;not null" json:"last_name"`
	DisplayName  string    `gorm:"column:display_name;size:255" json:"display_name"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash *string   `gorm:"column:password_hash;size:255" json:"password_hash,omitempty"`
	APIKey       *string   `gorm:"column:api_key;size:255;uniqueIndex" json:"api_key,omitempty"`
	Type         string    `gorm:"column:type;size:50;not null;check:type IN ('planner','administrator')" json:"type"`
	Department   string    `gorm:"column:department;size:10;not null;default:'OTHER'" json:"department"`
	OtherRole    *string   `gorm:"column:other_role;size:50" json:"other_role,omitempty"`
	Status       string    `gorm:"column:status;size:20;not null;default:'active'" json:"status"`
	EmployeeID   *uuid.UUID `gorm:"column:employee_id;type:char(36);index" json:"employee_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	LoginHistory []UserLoginHistory `gorm:"foreignKey:UserID;references:UserID" json:"login_history,omitempty"`

	restify.API
}

func (User) TableName() string {
	return "users"
}

type UserLoginHistory struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:char(36);not null;index;fk:users" json:"user_id"`
	IPAddress string    `gorm:"column:ip_address;size:45;not null" json:"ip_address"`
	UserAgent string    `gorm:"column:user_agent;size:500" json:"user_agent"`
	LoginAt   time.Time `gorm:"column:login_at;autoCreateTime" json:"login_at"`
	Success   bool      `gorm:"column:success;not null" json:"success"`
	Reason    string    `gorm:"column:reason;size:255" json:"reason"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`

	restify.API
}

func (UserLoginHistory) TableName() string {
	return "user_login_history"
}

// BeforeCreate hook to generate UUID for User
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

// Evo UserInterface implementation
func (u *User) GetFirstName() string {
	return u.Name
}

func (u *User) GetLastName() string {
	return u.LastName
}

func (u *User) GetFullName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

func (u *User) GetEmail() string {
	return u.Email
}

func (u *User) UUID() string {
	return u.UserID.String()
}

func (u *User) ID() uint64 {
	// Convert UUID to uint64 for compatibility
	return uint64(u.UserID.ID())
}

func (u *User) Interface() interface{} {
	return u
}

func (u *User) Anonymous() bool {
	return u.UserID == uuid.Nil
}

func (u *User) HasPermission(permission string) bool {
	return u.Type == UserTypeAdministrator
}

func (u *User) Attributes() evo.Attributes {
	var m evo.Attributes
	generic.Parse(u).Cast(&m)
	return m
}

// FromRequest extracts user from JWT token or API key in request
func (u *User) FromRequest(request *evo.Request) evo.UserInterface {
	authToken, ok := GetAuthToken(request)
	if !ok || authToken == "" {
		return u
	}

	// Handle API Key authentication
	if strings.HasPrefix(authToken, "APIKey") {
		apikey := strings.TrimSpace(authToken[6:])
		if apikey != "" {
			var user User
			if err := db.Where("api_key = ?", apikey).First(&user).Error; err != nil {
				log.Debug("API key not found:", err)
				return u
			}
			if !user.Anonymous() {
				return &user
			}
		}
		return u
	}

	// Handle JWT Bearer token authentication
	if !strings.HasPrefix(authToken, "Bearer ") {
		return u
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authToken, "Bearer "))

	if len(JWTSecret) == 0 {
		log.Error("JWT secret is not initialized!")
		return u
	}

	jwtToken, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return JWTSecret, nil
	})

	if err != nil {
		log.Debug("JWT parsing error:", err)
		return u
	}

	if !jwtToken.Valid {
		log.Debug("JWT token is not valid")
		return u
	}

	claims, ok := jwtToken.Claims.(*Claims)
	if !ok {
		log.Debug("JWT claims parsing failed")
		return u
	}

	var user User
	if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		log.Debug("User not found for claims:", claims.UserID)
		return u
	}

	return &user
}

// GetAuthToken reads the Authorization header (or access_token query
// parameter for websocket upgrades which cannot carry headers).
func GetAuthToken(request *evo.Request) (string, bool) {
	token := request.Header("Authorization")
	if token != "" {
		return token, true
	}
	if qp := request.Query("access_token").String(); qp != "" {
		return "Bearer " + qp, true
	}
	return "", false
}

// Password and JWT utilities
func (u *User) SetPassword(password string) error {
	hash, err := passlib.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = &hash
	return nil
}

func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == nil {
		return false
	}
	_, err := passlib.Verify(password, *u.PasswordHash)
	return err == nil
}

// GenerateAPIKey creates a new API key for the user
func (u *User) GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	apiKey := "cap_" + hex.EncodeToString(bytes)
	u.APIKey = &apiKey

	return apiKey, nil
}

// ClearAPIKey removes the API key from the user
func (u *User) ClearAPIKey() {
	u.APIKey = nil
}

func (u *User) GenerateJWT() (string, error) {
	claims := Claims{
		UserID:     u.UserID.String(),
		Email:      u.Email,
		Name:       u.GetFullName(),
		Type:       u.Type,
		Department: u.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func (u *User) GenerateRefreshToken() (string, error) {
	claims := Claims{
		UserID: u.UserID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// parseToken validates a signed token string and returns its claims.
// ParseAccessToken validates a raw JWT and returns its claims. Used by
// transports that cannot go through the request middleware, such as
// websocket upgrades.
func ParseAccessToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString)
}

func parseToken(tokenString string) (*Claims, error) {
	jwtToken, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !jwtToken.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	claims, ok := jwtToken.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

// RecordLogin creates a login history record
func (u *User) RecordLogin(request *evo.Request, success bool, reason string) {
	ip := request.IP()
	if ip == "" {
		ip = "unknown"
	}

	userAgent := request.Header("User-Agent")
	if userAgent == "" {
		userAgent = "unknown"
	}

	history := UserLoginHistory{
		UserID:    u.UserID,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   success,
		Reason:    reason,
	}

	db.Create(&history)
}
