package model

import "time"

// Message is a contact-form submission addressed to a portfolio owner.
type Message struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	SenderName  string    `json:"senderName"`
	SenderEmail string    `json:"senderEmail"`
	Subject     string    `json:"subject,omitempty"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContactInput is posted by anonymous visitors. It names the recipient by
// username because the sender has no session.
type ContactInput struct {
	Username    string `json:"username" validate:"required"`
	SenderName  string `json:"senderName" validate:"required,max=100"`
	SenderEmail string `json:"senderEmail" validate:"required,email,max=254"`
	Subject     string `json:"subject" validate:"max=200"`
	Body        string `json:"body" validate:"required,max=5000"`
}
