package domain

import "time"

// User is an identity known to the auth platform. Deleting a user removes
// every row that references it through ON DELETE CASCADE foreign keys.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile         *Profile          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Roles           []UserRole        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	Credential      *LocalCredential  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Books           []Book            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ReadingProgress []ReadingProgress `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type Profile struct {
	UserID      string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email       string    `gorm:"size:255" json:"email"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
