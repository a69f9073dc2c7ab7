// internal/domain/identity/entity.go
package identity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role gates administrative operations. Admins may administer SKUs, tiers,
// schemes and distributors; execs place and manage orders.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleExec  Role = "exec"
)

// ExecUser is an authenticated back-office account. Its id is stamped onto
// every mutation for audit.
type ExecUser struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string         `gorm:"not null;size:255" json:"-"`
	Name        string         `gorm:"size:100" json:"name"`
	Role        Role           `gorm:"not null;size:20;default:'exec'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for ExecUser
func (ExecUser) TableName() string {
	return "exec_users"
}

// BeforeCreate hook to normalize the email
func (u *ExecUser) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

// IsAdmin reports whether the account holds the admin role.
func (u *ExecUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
