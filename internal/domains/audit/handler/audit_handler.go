package handler

import (
	"net/http"

	"library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/internal/domains/audit/service"
	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	service service.ServiceInterface
}

func NewAuditHandler(service service.ServiceInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// ListAuditLogs handles GET /api/v1/audit-logs
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var req model.ListAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	entries, total, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to list audit logs", err)
		response.InternalServerError(c, "Failed to list audit logs")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Audit logs retrieved successfully", entries, &response.Meta{Total: total})
}
