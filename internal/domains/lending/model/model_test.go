package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLending(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewLending(uuid.New(), uuid.New(), uuid.New(), now, 14)

	assert.Equal(t, StatusBorrowed, l.Status)
	assert.Nil(t, l.ReturnedDate)
	assert.True(t, l.DueDate.After(l.BorrowedDate))
	assert.Equal(t, now.Add(14*24*time.Hour), l.DueDate)
}

func TestLending_IsOverdueAt(t *testing.T) {
	due := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status Status
		at     time.Time
		want   bool
	}{
		{"borrowed before due", StatusBorrowed, due.Add(-time.Hour), false},
		{"borrowed exactly at due", StatusBorrowed, due, false},
		{"borrowed past due", StatusBorrowed, due.Add(time.Second), true},
		{"stored overdue before due", StatusOverdue, due.Add(-time.Hour), true},
		{"returned past due", StatusReturned, due.Add(time.Hour), false},
		{"returned late past due", StatusReturnedLate, due.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Lending{Status: tt.status, DueDate: due}
			assert.Equal(t, tt.want, l.IsOverdueAt(tt.at))
		})
	}
}

func TestLending_CloseStatus(t *testing.T) {
	due := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	l := &Lending{Status: StatusBorrowed, DueDate: due}

	assert.Equal(t, StatusReturned, l.CloseStatus(due.Add(-time.Minute)))
	assert.Equal(t, StatusReturned, l.CloseStatus(due))
	assert.Equal(t, StatusReturnedLate, l.CloseStatus(due.Add(time.Nanosecond)))
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusBorrowed.IsOpen())
	assert.True(t, StatusOverdue.IsOpen())
	assert.True(t, StatusReturned.IsTerminal())
	assert.True(t, StatusReturnedLate.IsTerminal())
	assert.False(t, Status("lost").Valid())
}

func TestLateFee(t *testing.T) {
	due := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	perDay := decimal.RequireFromString("0.50")

	assert.Equal(t, 0, DaysOverdue(due, due))
	assert.True(t, LateFee(due, due, perDay).IsZero())

	assert.Equal(t, 1, DaysOverdue(due, due.Add(time.Minute)))
	assert.Equal(t, 3, DaysOverdue(due, due.Add(48*time.Hour+time.Second)))
	assert.True(t, decimal.RequireFromString("1.50").Equal(LateFee(due, due.Add(72*time.Hour), perDay)))
}

func TestCheckoutRequest_Validate(t *testing.T) {
	days := func(n int) *int { return &n }
	valid := CheckoutRequest{ReaderID: uuid.NewString(), BookID: uuid.NewString()}

	require.NoError(t, valid.Validate(365))
	assert.Equal(t, DefaultLoanDays, valid.LoanDays(DefaultLoanDays))

	for _, n := range []int{1, 365} {
		bound := CheckoutRequest{ReaderID: uuid.NewString(), BookID: uuid.NewString(), Days: days(n)}
		require.NoError(t, bound.Validate(365), "days=%d", n)
		assert.Equal(t, n, bound.LoanDays(DefaultLoanDays))
	}

	tests := []struct {
		name string
		req  CheckoutRequest
	}{
		{"missing reader", CheckoutRequest{BookID: uuid.NewString()}},
		{"bad book id", CheckoutRequest{ReaderID: uuid.NewString(), BookID: "abc"}},
		{"zero days", CheckoutRequest{ReaderID: uuid.NewString(), BookID: uuid.NewString(), Days: days(0)}},
		{"negative days", CheckoutRequest{ReaderID: uuid.NewString(), BookID: uuid.NewString(), Days: days(-3)}},
		{"too many days", CheckoutRequest{ReaderID: uuid.NewString(), BookID: uuid.NewString(), Days: days(400)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.req.Validate(365))
		})
	}
}

func TestLookupError(t *testing.T) {
	mapping, ok := LookupError(NewAlreadyReturnedError(uuid.New(), StatusReturned))
	require.True(t, ok)
	assert.Equal(t, 404, mapping.Status)
	assert.Equal(t, "ALREADY_RETURNED", mapping.Code)

	mapping, ok = LookupError(NewBookUnavailableError(uuid.New()))
	require.True(t, ok)
	assert.Equal(t, 400, mapping.Status)

	_, ok = LookupError(assert.AnError)
	assert.False(t, ok)
}
