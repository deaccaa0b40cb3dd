package user

import "time"

// User is created lazily the first time a verified token subject is seen.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"column:clerk_user_id;uniqueIndex;not null" json:"-"`
	Username   string    `gorm:"column:username;index" json:"username"`
	Email      *string   `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }
