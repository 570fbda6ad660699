package model

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionReturn Action = "RETURN"
)

const TargetLending = "Lending"

// Entry là một dòng audit log: ai (staff) đã làm gì với entity nào.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Action      Action    `json:"action"`
	PerformedBy uuid.UUID `json:"performedBy"`
	TargetModel string    `json:"targetModel"`
	TargetID    uuid.UUID `json:"targetId"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewEntry(action Action, performedBy uuid.UUID, targetModel string, targetID uuid.UUID, at time.Time) *Entry {
	return &Entry{
		ID:          uuid.New(),
		Action:      action,
		PerformedBy: performedBy,
		TargetModel: targetModel,
		TargetID:    targetID,
		Timestamp:   at,
	}
}

type ListAuditRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
