package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DaysOverdue làm tròn lên theo ngày 24h: trễ 1 phút tính 1 ngày.
func DaysOverdue(due, returnedAt time.Time) int {
	if !returnedAt.After(due) {
		return 0
	}
	late := returnedAt.Sub(due)
	return int(math.Ceil(late.Hours() / 24))
}

func LateFee(due, returnedAt time.Time, perDay decimal.Decimal) decimal.Decimal {
	days := DaysOverdue(due, returnedAt)
	if days == 0 || perDay.IsNegative() {
		return decimal.Zero
	}
	return perDay.Mul(decimal.NewFromInt(int64(days)))
}
