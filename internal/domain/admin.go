package domain

import "time"

// Admin marks a user as administrator; presence of the row is the whole grant.
type Admin struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:64" json:"user_id"`
	Email     string    `gorm:"column:email" json:"email"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Admin) TableName() string { return "admins" }
