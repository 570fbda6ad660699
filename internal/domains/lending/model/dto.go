package model

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type CheckoutRequest struct {
	ReaderID string `json:"readerId"`
	BookID   string `json:"bookId"`
	Days     *int   `json:"days,omitempty"`
}

func (r CheckoutRequest) Validate(maxLoanDays int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReaderID,
			validation.Required.Error("readerId is required"),
			is.UUID.Error("readerId must be a valid UUID"),
		),
		validation.Field(&r.BookID,
			validation.Required.Error("bookId is required"),
			is.UUID.Error("bookId must be a valid UUID"),
		),
		// Min/Max bỏ qua giá trị rỗng (0), nên kiểm tra trực tiếp con trỏ
		validation.Field(&r.Days,
			validation.When(r.Days != nil, validation.By(func(interface{}) error {
				switch {
				case *r.Days < 1:
					return errors.New("days must be a positive integer")
				case *r.Days > maxLoanDays:
					return fmt.Errorf("days exceeds the maximum loan period of %d", maxLoanDays)
				}
				return nil
			})),
		),
	)
}

// LoanDays trả về days của request hoặc default
func (r CheckoutRequest) LoanDays(def int) int {
	if r.Days == nil {
		return def
	}
	return *r.Days
}
