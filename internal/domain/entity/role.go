package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin        = 1
	RoleIDReceptionist = 2
	RoleIDTechnician   = 3
	RoleIDCustomer     = 4
)

// RoleNames constants
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleTechnician   = "technician"
	RoleCustomer     = "customer"
)

// RoleNameByID maps role IDs to their names. Unknown IDs map to "".
func RoleNameByID(roleID int) string {
	switch roleID {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDReceptionist:
		return RoleReceptionist
	case RoleIDTechnician:
		return RoleTechnician
	case RoleIDCustomer:
		return RoleCustomer
	default:
		return ""
	}
}
