package model

// Permission is a capability tag that can be assigned to users
type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "pos"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Capability codes
const (
	PermDashboard = "dashboard"
	PermPOS       = "pos"
	PermInventory = "inventory"
	PermReports   = "reports"
	PermSettings  = "settings"
)

// Default permissions for the system
var DefaultPermissions = []Permission{
	{Code: PermDashboard, Name: "View Dashboard"},
	{Code: PermPOS, Name: "Point of Sale"},
	{Code: PermInventory, Name: "Manage Inventory"},
	{Code: PermReports, Name: "View Reports"},
	{Code: PermSettings, Name: "Manage Settings"},
}
