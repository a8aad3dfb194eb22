package domain

import "time"

type AppRole string

const (
	RoleAdmin AppRole = "admin"
	RoleUser  AppRole = "user"
)

func (r AppRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserRole grants one role to one user. The pair is unique.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	Role      AppRole   `gorm:"size:32;not null;uniqueIndex:idx_user_roles_user_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
