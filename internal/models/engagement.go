package models

import "time"

// Like is an engagement row owned by the like widget. Only its count is read here.
// The combination of OwnerKey and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_owner_post;index" json:"post_id"`
	OwnerKey  string    `gorm:"size:128;not null;uniqueIndex:idx_like_owner_post" json:"owner_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an engagement row owned by the comments widget. Only its count is read here.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	OwnerKey  string    `gorm:"size:128;not null" json:"owner_key"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
