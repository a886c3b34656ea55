// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account of the task and time manager.
// It contains authentication credentials, profile data and the assigned role.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Name is the display name.
	Name string `gorm:"size:255;not null"`

	// Email is the login identifier. It must be unique across all users
	// and is compared case-sensitively.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt digest of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// Contact is a free-form phone or contact string.
	Contact string `gorm:"size:64"`

	// Role decides which part of the product the user can reach.
	Role Role `gorm:"size:32;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
