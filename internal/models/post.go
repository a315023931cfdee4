// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a published academic work.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:300;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Author      string     `gorm:"size:200;not null" json:"author"`
	Advisor     string     `gorm:"size:200" json:"advisor,omitempty"`
	OwnerKey    string     `gorm:"size:128;not null;index" json:"owner_key"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	CommunityID *uint      `gorm:"index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"-"`
	ProjectURL  string     `gorm:"not null" json:"project_url"`
	ImageURL    *string    `json:"image_url,omitempty"`
	// AssetURLs maps every uploaded manifest slot to its public URL.
	AssetURLs datatypes.JSONMap `json:"asset_urls,omitempty"`
	// CreatedAt is assigned by the database when left zero.
	CreatedAt time.Time         `gorm:"index;default:CURRENT_TIMESTAMP;autoCreateTime:false" json:"created_at"`

	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->;-:migration" json:"like_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->;-:migration" json:"comment_count"`
	// CommunityName is joined in by community-scoped reads
	CommunityName string `gorm:"->;-:migration" json:"community_name,omitempty"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}
