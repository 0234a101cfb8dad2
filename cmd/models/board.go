package models

import "time"

// Post is soft-deleted only: IsDeleted is an ordinary column managed by the
// services, never GORM's DeletedAt, so visibility rules stay in one place.
type Post struct {
    ID        uint       `gorm:"primaryKey" json:"id"`
    Title     string     `gorm:"column:title;size:150;not null" json:"title"`
    Content   string     `gorm:"column:content;type:text;not null" json:"content"`
    AuthorID  uint       `gorm:"column:author_id;not null;index" json:"author_id"`
    ViewCount int64      `gorm:"column:view_count;not null;default:0" json:"view_count"`
    LikeCount int64      `gorm:"column:like_count;not null;default:0" json:"like_count"`
    IsDeleted bool       `gorm:"column:is_deleted;not null;default:false;index" json:"-"`
    CreatedAt time.Time  `json:"created_at"`
    UpdatedAt time.Time  `json:"updated_at"`
    Author    *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
    Files     []PostFile `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

// PostFile is owned exclusively by one post; rows are only ever written as
// part of post creation and cascade away if the post row is hard-deleted.
type PostFile struct {
    ID           uint      `gorm:"primaryKey" json:"id"`
    PostID       uint      `gorm:"column:post_id;not null;index" json:"post_id"`
    FileURL      string    `gorm:"column:file_url;type:text;not null" json:"file_url"`
    OriginalName string    `gorm:"column:original_name;size:255;not null" json:"original_name"`
    FileSize     int64     `gorm:"column:file_size;not null" json:"file_size"`
    MimeType     string    `gorm:"column:mime_type;size:50;not null" json:"mime_type"`
    CreatedAt    time.Time `json:"created_at"`
}

type Comment struct {
    ID        uint      `gorm:"primaryKey" json:"id"`
    PostID    uint      `gorm:"column:post_id;not null;index" json:"post_id"`
    AuthorID  uint      `gorm:"column:author_id;not null" json:"author_id"`
    Content   string    `gorm:"column:content;size:1000;not null" json:"content"`
    ParentID  *uint     `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
    IsDeleted bool      `gorm:"column:is_deleted;not null;default:false" json:"-"`
    CreatedAt time.Time `json:"created_at"`
    Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
    Post      *Post     `gorm:"foreignKey:PostID" json:"-"`
    Parent    *Comment  `gorm:"foreignKey:ParentID" json:"-"`
}
