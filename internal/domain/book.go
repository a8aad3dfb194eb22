package domain

import "time"

type BookStatus string

const (
	BookStatusPending  BookStatus = "pending"
	BookStatusApproved BookStatus = "approved"
	BookStatusRejected BookStatus = "rejected"
)

// Reviewed reports whether the status is a terminal review outcome.
func (s BookStatus) Reviewed() bool {
	return s == BookStatusApproved || s == BookStatusRejected
}

type Book struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title         string     `gorm:"size:512;not null" json:"title"`
	Author        string     `gorm:"size:255;not null" json:"author"`
	Category      string     `gorm:"size:128" json:"category"`
	Description   string     `gorm:"type:text" json:"description"`
	CoverURL      string     `gorm:"size:1024" json:"cover_url"`
	FileURL       string     `gorm:"size:1024" json:"file_url"`
	FileType      string     `gorm:"size:32" json:"file_type"`
	PublisherName string     `gorm:"size:255" json:"publisher_name"`
	Status        BookStatus `gorm:"size:32;not null;default:pending;index" json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	ReadingProgress []ReadingProgress `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

type ReadingProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reading_progress_user_book" json:"user_id"`
	BookID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_reading_progress_user_book" json:"book_id"`
	CurrentPage int       `gorm:"not null;default:1" json:"current_page"`
	TotalPages  int       `json:"total_pages"`
	UpdatedAt   time.Time `json:"updated_at"`
}
