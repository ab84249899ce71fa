package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is an awareness/education post authored by a registered user.
// Only published articles are listed publicly.
type Article struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Published bool           `gorm:"default:false;index" json:"published"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"-"`
}
