package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateBookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	Category      string `json:"category"`
	PublishedYear int    `json:"publishedYear"`
	TotalCopies   int    `json:"totalCopies"`
}

func (r CreateBookRequest) Validate() error {
	maxYear := time.Now().Year() + 1
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required.Error("author is required"), validation.Length(1, 255)),
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			validation.By(func(value interface{}) error {
				return is.ISBN.Validate(normalizeISBN(value.(string)))
			}),
		),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.PublishedYear, validation.When(r.PublishedYear != 0, validation.Min(1000), validation.Max(maxYear))),
		validation.Field(&r.TotalCopies, validation.Required.Error("totalCopies must be at least 1"), validation.Min(1)),
	)
}

// ToBook: sách mới có AvailableCopies = TotalCopies
func (r CreateBookRequest) ToBook(now time.Time) *Book {
	return &Book{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(r.Title),
		Author:          strings.TrimSpace(r.Author),
		ISBN:            normalizeISBN(r.ISBN),
		Category:        strings.TrimSpace(r.Category),
		PublishedYear:   r.PublishedYear,
		TotalCopies:     r.TotalCopies,
		AvailableCopies: r.TotalCopies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func normalizeISBN(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "")
}

type ListBooksRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
