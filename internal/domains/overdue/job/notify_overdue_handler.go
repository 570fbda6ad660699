package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"library-lending-backend/internal/domains/overdue/model"
	"library-lending-backend/internal/domains/overdue/service"
	"library-lending-backend/internal/shared"
	"library-lending-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// NotifyOverdueHandler xử lý task overdue:notify_readers
// (đến từ scheduler hoặc từ POST /notifications/notify-overdue?async=true)
type NotifyOverdueHandler struct {
	service service.ServiceInterface
}

func NewNotifyOverdueHandler(service service.ServiceInterface) *NotifyOverdueHandler {
	return &NotifyOverdueHandler{service: service}
}

func (h *NotifyOverdueHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.NotifyOverduePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			// payload hỏng thì retry cũng vô ích
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	triggeredBy := payload.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = "scheduler"
	}

	report, err := h.service.NotifyOverdueReaders(ctx, triggeredBy)
	if err != nil {
		if errors.Is(err, model.ErrNotifyInProgress) {
			logger.Info("Overdue notification already running, skip task", map[string]interface{}{
				"triggered_by": triggeredBy,
			})
			return nil
		}
		return fmt.Errorf("notify overdue readers: %w", err)
	}

	logger.Info("Overdue notification task completed", map[string]interface{}{
		"message":      report.Message(),
		"triggered_by": triggeredBy,
	})
	return nil
}

// NewNotifyOverdueTask tạo task để enqueue (API async hoặc scheduler)
func NewNotifyOverdueTask(triggeredBy string, requestedAt time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(shared.NotifyOverduePayload{
		TriggeredBy: triggeredBy,
		RequestedAt: requestedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notify payload: %w", err)
	}
	return asynq.NewTask(shared.TypeNotifyOverdueReaders, data), nil
}
