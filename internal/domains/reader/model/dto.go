package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type CreateReaderRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Validate chạy trên bản đã normalize, giống giá trị ToReader sẽ lưu
func (r CreateReaderRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)

	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 100),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != "",
				is.EmailFormat.Error("invalid email format"),
				validation.Length(5, 255),
			),
		),
		validation.Field(&r.ContactNumber, validation.Length(0, 30)),
		validation.Field(&r.Address, validation.Length(0, 255)),
	)
}

func (r CreateReaderRequest) ToReader(now time.Time) *Reader {
	return &Reader{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(r.Name),
		Email:         NormalizeEmail(r.Email),
		ContactNumber: strings.TrimSpace(r.ContactNumber),
		Address:       strings.TrimSpace(r.Address),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type ListReadersRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
