package models

import (
	"time"
)

// Profile holds the extended, mutable attributes of a user: avatar, the
// hashed secret word used for password recovery, and the follower graph.
// Exactly one profile exists per user; it is created in the same
// transaction as the user row.
type Profile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	Avatar     string    `json:"avatar"`
	SecretWord string    `gorm:"column:secret_word" json:"-"`
	Followers  []User    `gorm:"many2many:profile_followers" json:"followers,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// FollowersCount is not persisted; computed at query time
	FollowersCount int `gorm:"->;-:migration" json:"followers_count"`
}
