package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	var w WhereBuilder
	assert.Equal(t, "", w.SQL())

	w.Add("l.reader_id = ?", "r1")
	w.Add("l.status = ?", "borrowed")
	limit := w.Next(20)

	assert.Equal(t, "WHERE l.reader_id = $1 AND l.status = $2", w.SQL())
	assert.Equal(t, "$3", limit)
	assert.Equal(t, []any{"r1", "borrowed", 20}, w.Args())
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		limit, offset, wantLimit, wantOffset int
	}{
		{0, 0, DefaultPageLimit, 0},
		{500, -3, MaxPageLimit, 0},
		{10, 40, 10, 40},
	}
	for _, tc := range cases {
		l, o := NormalizePage(tc.limit, tc.offset)
		assert.Equal(t, tc.wantLimit, l)
		assert.Equal(t, tc.wantOffset, o)
	}
}

func TestQueryInt(t *testing.T) {
	assert.Equal(t, 7, QueryInt("", 7))
	assert.Equal(t, 7, QueryInt("x", 7))
	assert.Equal(t, 3, QueryInt("3", 7))
}
