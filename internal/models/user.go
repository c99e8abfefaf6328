package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	Email           string       `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string       `json:"-" gorm:"not null"`
	FirstName       string       `json:"first_name" gorm:"not null"`
	LastName        string       `json:"last_name" gorm:"not null"`
	Gender          string       `json:"gender" gorm:"not null"` // M, F
	Age             int          `json:"age" gorm:"not null"`
	City            string       `json:"city" gorm:"not null"`
	Hobbies         string       `json:"hobbies"`
	Status          string       `json:"status" gorm:"default:looking"`          // looking, relationship, married, complicated
	PrivacySettings string       `json:"privacy_settings" gorm:"default:public"` // public, private, friends_only
	LikesCount      int          `json:"likes_count" gorm:"default:0"`
	IsVerified      bool         `json:"is_verified" gorm:"default:false"`
	Profile         *UserProfile `json:"profile,omitempty"`
	Photos          []UserPhoto  `json:"photos,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type UserProfile struct {
	ID                uint      `json:"-" gorm:"primaryKey"`
	UserID            uint      `json:"-" gorm:"uniqueIndex;not null"`
	Bio               string    `json:"bio"`
	Height            *int      `json:"height,omitempty"`
	Education         string    `json:"education"`
	Profession        string    `json:"profession"`
	Smoking           bool      `json:"smoking" gorm:"default:false"`
	Drinking          bool      `json:"drinking" gorm:"default:false"`
	RelationshipGoals string    `json:"relationship_goals"`
	UpdatedAt         time.Time `json:"-"`
}

type UserPhoto struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	URL        string         `json:"url" gorm:"not null"`
	IsMain     bool           `json:"is_main" gorm:"default:false"`
	UploadedAt time.Time      `json:"uploaded_at" gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
