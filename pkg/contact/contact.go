// Package contact stores messages from the public contact form for the
// admin inbox.
package contact

import (
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("contact message not found")

// Message is one contact-form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=200"`
	Email     string    `json:"email" validate:"required,email"`
	Subject   string    `json:"subject" validate:"max=300"`
	Message   string    `json:"message" validate:"required,max=5000"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
