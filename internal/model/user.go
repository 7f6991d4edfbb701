// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered portfolio owner.
//
// PasswordHash is tagged json:"-" so it can never leak through an API
// response, even if a handler serializes the whole struct by mistake.
// GitHubID is nil until the owner links a GitHub account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"githubId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is the minimal identity carried by a session token.
type Session struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Session returns the public session view of the user.
func (u *User) Session() *Session {
	return &Session{UserID: u.ID, Username: u.Username, Name: u.Name}
}

// PublicUser is what the renderer may show about an owner.
type PublicUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}
