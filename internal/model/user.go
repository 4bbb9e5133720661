package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username     string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"username" validate:"required"`
	Password     string       `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string       `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	RoleID       *uint        `gorm:"index" json:"role_id"`
	Role         *Role        `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	Permissions  []Permission `gorm:"many2many:user_permissions;" json:"permissions,omitempty"`
	TokenVersion string       `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time   `json:"last_seen_at,omitempty"`                // For user presence
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// RoleCode returns the user's role code, empty when unassigned
func (u *User) RoleCode() string {
	if u.Role != nil {
		return u.Role.Code
	}
	return ""
}

// GetPermissionCodes returns a slice of all capability codes for this user
func (u *User) GetPermissionCodes() []string {
	codes := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		codes[i] = p.Code
	}
	return codes
}

// ToActor builds the explicit actor value passed into service calls
func (u *User) ToActor() Actor {
	return Actor{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		RoleCode:    u.RoleCode(),
		Permissions: u.GetPermissionCodes(),
	}
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID    `json:"id"`
	Username    string       `json:"username"`
	FullName    string       `json:"full_name"`
	RoleID      *uint        `json:"role_id,omitempty"`
	Role        *Role        `json:"role,omitempty"`
	IsActive    bool         `json:"is_active"`
	LastSeenAt  *time.Time   `json:"last_seen_at,omitempty"`
	Permissions []Permission `json:"permissions"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		RoleID:      u.RoleID,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
		Permissions: u.Permissions,
	}
}
