package model

// Role represents user roles in the system
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, EMPLOYEE
	Name        string       `gorm:"type:varchar(100)" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full access; catalog mutations commit directly",
	},
	{
		Code:        RoleEmployee,
		Name:        "Employee",
		Description: "Sales access; catalog mutations go through the approval queue",
	},
}
