package models

import "time"

type User struct {
    ID        uint      `gorm:"primaryKey" json:"id"`
    Username  string    `gorm:"column:username;size:50;uniqueIndex;not null" json:"username"`
    Password  string    `gorm:"column:password;size:255;not null" json:"-"`
    Nickname  string    `gorm:"column:nickname;size:50;not null" json:"nickname"`
    Role      string    `gorm:"column:role;size:20;not null;default:USER" json:"role"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
