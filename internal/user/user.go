package user

import (
	"strings"
	"time"
)

// Role names. A user may hold several, stored comma separated.
const (
	RoleAdmin      = "Admin"
	RoleManager    = "Manager"
	RoleDispatcher = "Dispatcher"
	RoleDriver     = "Driver"
	RoleAnalyst    = "Analyst"
)

// User is the users table GORM model.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	PasswordSalt string    `gorm:"size:64;not null"`
	Roles        string    `gorm:"size:256;not null"` // comma separated, e.g. "Driver,Dispatcher"
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// RolesSlice splits the stored role list.
func (u User) RolesSlice() []string {
	if strings.TrimSpace(u.Roles) == "" {
		return nil
	}
	parts := strings.Split(u.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RolesJoin joins a role list for storage.
func RolesJoin(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return strings.Join(out, ",")
}

// ValidRole reports whether r is one of the known role names.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDispatcher, RoleDriver, RoleAnalyst:
		return true
	}
	return false
}
