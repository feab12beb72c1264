package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleSales          = "sales"
	RoleProjectManager = "project_manager"
	RoleAdmin          = "admin"
	RoleManager        = "manager"
)

// User is a back-office account. Roles is a comma-separated list; the first
// entry is the primary role.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     *string   `gorm:"type:varchar(254)"`
	Roles     string    `gorm:"type:varchar(100);not null;default:'sales'"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// RoleList splits Roles, dropping blanks.
func (u *User) RoleList() []string {
	var out []string
	for _, r := range strings.Split(u.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (u *User) PrimaryRole() string {
	if roles := u.RoleList(); len(roles) > 0 {
		return roles[0]
	}
	return RoleSales
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName falls back to the username when no name is set.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Username
}

// Mailbox returns the user's email, or "" when none is usable.
func (u *User) Mailbox() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return strings.TrimSpace(*u.Email)
}
