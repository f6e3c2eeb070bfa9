package models

import (
	"strings"
	"time"
)

// Roles known to the API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the user model in the database
type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	Roles       string     `gorm:"size:255;default:user" json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// RoleList splits the comma separated Roles column.
func (u *User) RoleList() []string {
	var roles []string
	for _, r := range strings.Split(u.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
