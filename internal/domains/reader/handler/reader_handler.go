package handler

import (
	"errors"
	"net/http"

	"library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/domains/reader/service"
	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReaderHandler struct {
	service service.ServiceInterface
}

func NewReaderHandler(service service.ServiceInterface) *ReaderHandler {
	return &ReaderHandler{service: service}
}

// CreateReader handles POST /api/v1/readers
func (h *ReaderHandler) CreateReader(c *gin.Context) {
	var req model.CreateReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", err.Error())
		return
	}

	reader, err := h.service.CreateReader(c.Request.Context(), req)
	if err != nil {
		switch {
		case model.IsValidationError(err):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		case errors.Is(err, model.ErrEmailAlreadyExists):
			response.ErrorResponse(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered to another reader")
		default:
			logger.Error("Failed to create reader", err)
			response.InternalServerError(c, "Failed to create reader")
		}
		return
	}

	response.Success(c, http.StatusCreated, "Reader created successfully", reader)
}

// GetReader handles GET /api/v1/readers/:id
func (h *ReaderHandler) GetReader(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid reader ID format")
		return
	}

	reader, err := h.service.GetReader(c.Request.Context(), id)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.ErrorResponse(c, http.StatusNotFound, "READER_NOT_FOUND", "Reader not found")
			return
		}
		logger.Error("Failed to get reader", err)
		response.InternalServerError(c, "Failed to get reader")
		return
	}

	response.Success(c, http.StatusOK, "Reader retrieved successfully", reader)
}

// ListReaders handles GET /api/v1/readers
func (h *ReaderHandler) ListReaders(c *gin.Context) {
	var req model.ListReadersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	readers, total, err := h.service.ListReaders(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to list readers", err)
		response.InternalServerError(c, "Failed to list readers")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Readers retrieved successfully", readers, &response.Meta{Total: total})
}
