package domain

import "time"

// User is the account behind an artwork owner or a liking viewer.
// The art service only reads it for owner display info.
type User struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	Email           string    `json:"email" gorm:"not null;uniqueIndex"`
	Nickname        string    `json:"nickname" gorm:"not null"`
	Role            string    `json:"role" gorm:"not null;default:'USER'"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
