package model

import (
	"time"

	"github.com/google/uuid"
)

// Reader là người mượn sách. Email optional: reader không có email
// sẽ bị bỏ qua khi gửi overdue notification.
type Reader struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Summary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

func (r *Reader) Summary() Summary {
	return Summary{ID: r.ID, Name: r.Name, Email: r.Email}
}

func (r *Reader) HasEmail() bool {
	return r.Email != ""
}
