package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book references its author by users.id. The reference is deliberately not a
// foreign-key constraint: a deleted author leaves a dangling AuthorID and
// lookups resolve it to a null author.
type Book struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	AuthorID  *string    `gorm:"index" json:"authorId,omitempty"`
	Published *time.Time `json:"published,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (book *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	return
}

func (Book) TableName() string {
	return "books"
}
