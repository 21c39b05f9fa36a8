package database

import "time"

// Login holds the credentials of a registered user. Rows are created during
// registration together with the matching User row and never updated.
type Login struct {
	Email string `gorm:"primaryKey" json:"email"`
	Hash  string `gorm:"not null" json:"-"`
}

// TableName keeps the table name of the original schema.
func (Login) TableName() string { return "login" }

// User is the public user record. Entries counts successful image
// generations and is only ever incremented.
type User struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Name    string    `gorm:"not null" json:"name"`
	Email   string    `gorm:"uniqueIndex;not null" json:"email"`
	Entries int64     `gorm:"not null;default:0" json:"entries"`
	Joined  time.Time `gorm:"not null" json:"joined"`
}

// TableName keeps the table name of the original schema.
func (User) TableName() string { return "users" }
