package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"library-lending-backend/internal/domains/overdue/job"
	"library-lending-backend/internal/domains/overdue/model"
	"library-lending-backend/internal/domains/overdue/service"
	"library-lending-backend/internal/shared"
	"library-lending-backend/internal/shared/middleware"
	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TaskEnqueuer được implement bởi *asynq.Client
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type OverdueHandler struct {
	service  service.ServiceInterface
	enqueuer TaskEnqueuer
}

// NewOverdueHandler: enqueuer nil khi Redis tắt, khi đó async notify trả 503
func NewOverdueHandler(service service.ServiceInterface, enqueuer TaskEnqueuer) *OverdueHandler {
	return &OverdueHandler{service: service, enqueuer: enqueuer}
}

// ListOverdue handles GET /api/v1/overdue
func (h *OverdueHandler) ListOverdue(c *gin.Context) {
	groups, err := h.service.ListGrouped(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list overdue readers", err)
		response.InternalServerError(c, "Failed to list overdue readers")
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, "Overdue readers retrieved successfully", groups, &response.Meta{Total: len(groups)})
}

// ListOverdueByReader handles GET /api/v1/overdue/:readerId
func (h *OverdueHandler) ListOverdueByReader(c *gin.Context) {
	readerID, err := uuid.Parse(c.Param("readerId"))
	if err != nil {
		response.BadRequest(c, "Invalid reader ID format")
		return
	}

	lendings, err := h.service.ListByReader(c.Request.Context(), readerID)
	if err != nil {
		logger.Error("Failed to list overdue lendings for reader", err)
		response.InternalServerError(c, "Failed to list overdue lendings")
		return
	}
	response.Success(c, http.StatusOK, "Overdue lendings retrieved successfully", lendings)
}

// ExportOverdue handles GET /api/v1/overdue/export
func (h *OverdueHandler) ExportOverdue(c *gin.Context) {
	buf, err := h.service.ExportGroupedExcel(c.Request.Context())
	if err != nil {
		logger.Error("Failed to export overdue readers", err)
		response.InternalServerError(c, "Failed to export overdue readers")
		return
	}

	filename := fmt.Sprintf("overdue-readers-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// NotifyOverdue handles POST /api/v1/notifications/notify-overdue[?async=true]
func (h *OverdueHandler) NotifyOverdue(c *gin.Context) {
	triggeredBy := ""
	if staffID, ok := middleware.GetStaffID(c); ok {
		triggeredBy = staffID.String()
	}

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		h.enqueueNotify(c, triggeredBy)
		return
	}

	report, err := h.service.NotifyOverdueReaders(c.Request.Context(), triggeredBy)
	if err != nil {
		if errors.Is(err, model.ErrNotifyInProgress) {
			response.ErrorResponse(c, http.StatusConflict, "NOTIFY_IN_PROGRESS", "An overdue notification run is already in progress")
			return
		}
		logger.Error("Failed to notify overdue readers", err)
		response.InternalServerError(c, "Failed to notify overdue readers")
		return
	}

	response.Success(c, http.StatusOK, report.Message(), report)
}

func (h *OverdueHandler) enqueueNotify(c *gin.Context, triggeredBy string) {
	if h.enqueuer == nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "ASYNC_UNAVAILABLE", model.ErrAsyncUnavailable.Error())
		return
	}

	task, err := job.NewNotifyOverdueTask(triggeredBy, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to build notify task", err)
		response.InternalServerError(c, "Failed to schedule notification run")
		return
	}

	info, err := h.enqueuer.EnqueueContext(c.Request.Context(), task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to enqueue notify task", err)
		response.InternalServerError(c, "Failed to schedule notification run")
		return
	}

	response.Success(c, http.StatusAccepted, "Overdue notification run scheduled", gin.H{
		"taskId": info.ID,
		"queue":  info.Queue,
	})
}
