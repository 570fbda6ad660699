package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// WhereBuilder gom điều kiện WHERE và positional args ($1, $2...) cho pgx
type WhereBuilder struct {
	clauses []string
	args    []any
}

// Add thêm một điều kiện; "?" trong clause được thay bằng placeholder kế tiếp
func (w *WhereBuilder) Add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// Next trả về placeholder cho arg kế tiếp (dùng cho LIMIT/OFFSET)
func (w *WhereBuilder) Next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// SQL trả về "WHERE ..." hoặc chuỗi rỗng nếu không có điều kiện
func (w *WhereBuilder) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + JoinWithAnd(w.clauses)
}

func (w *WhereBuilder) Args() []any {
	return w.args
}
