package model

import (
	"time"

	"github.com/google/uuid"
)

// Outcome là kết quả dispatch cho một reader
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

const OverdueReminderSubject = "Overdue Book Reminder"

// Skip reasons
const (
	SkipReaderNotFound = "reader_not_found"
	SkipNoEmail        = "no_email"
	SkipNoOverdue      = "no_overdue_lendings"
)

// OverdueItem là một dòng trong email nhắc trả sách
type OverdueItem struct {
	Title   string
	Author  string
	DueDate time.Time
}

// ReminderData là data render template email
type ReminderData struct {
	ReaderID   uuid.UUID
	ReaderName string
	Items      []OverdueItem
	Library    string
}
