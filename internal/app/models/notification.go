package models

import "time"

// Notification is an inbox row delivered to a single user ('notifications' table)
type Notification struct {
	ID           int64            `json:"id" db:"id"`
	RecipientID  int64            `json:"recipientId" db:"recipient_id"`
	InternshipID int64            `json:"internshipId" db:"internship_id"`
	Status       InternshipStatus `json:"status" db:"status"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	IsRead       bool             `json:"isRead" db:"is_read"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}
