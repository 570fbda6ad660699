package model

import (
	"time"

	"github.com/google/uuid"
)

// Book là một title trong catalog với số bản (copies) vật lý.
// Invariant: 0 <= AvailableCopies <= TotalCopies, TotalCopies >= 1.
// AvailableCopies chỉ được thay đổi bởi lending ledger (checkout/return).
type Book struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category,omitempty"`
	PublishedYear   int       `json:"publishedYear,omitempty"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Summary là phần của Book được embed vào lending responses
type Summary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}

func (b *Book) Summary() Summary {
	return Summary{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN}
}

func (b *Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}

// CanRestock: còn chỗ để nhận lại một bản
func (b *Book) CanRestock() bool {
	return b.AvailableCopies < b.TotalCopies
}
