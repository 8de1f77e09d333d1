// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a feed post in the Ripple application.
// Username is denormalized from the author at write time so historical
// display never changes when a user record does; responses always serve
// the stored copy, never a join.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"author_id"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	Username string `gorm:"not null" json:"username"`
	Text     string `gorm:"type:text" json:"text"`
	ImageURL string `json:"image_url"`
	// LikeUserIDs is not persisted; populated from the likes table in
	// like-creation order.
	LikeUserIDs []uint `gorm:"-" json:"likes"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	Comments  []Comment      `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
