package shared

import "time"

// Asynq task types
const (
	TypeNotifyOverdueReaders = "overdue:notify_readers"
)

// Asynq queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// NotifyOverduePayload là payload của task overdue:notify_readers.
// TriggeredBy rỗng khi task đến từ scheduler.
type NotifyOverduePayload struct {
	TriggeredBy string    `json:"triggeredBy,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Cache keys
const (
	CacheKeyNotifyRunLock = "lock:overdue:notify"
)
