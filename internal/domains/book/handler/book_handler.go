package handler

import (
	"errors"
	"net/http"

	"library-lending-backend/internal/domains/book/model"
	"library-lending-backend/internal/domains/book/service"
	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookHandler struct {
	service service.ServiceInterface
}

func NewBookHandler(service service.ServiceInterface) *BookHandler {
	return &BookHandler{service: service}
}

// CreateBook handles POST /api/v1/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", err.Error())
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		switch {
		case model.IsValidationError(err):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		case errors.Is(err, model.ErrISBNAlreadyExists):
			response.ErrorResponse(c, http.StatusConflict, "ISBN_EXISTS", "This ISBN is already registered")
		default:
			logger.Error("Failed to create book", err)
			response.InternalServerError(c, "Failed to create book")
		}
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", book)
}

// GetBook handles GET /api/v1/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID format")
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.ErrorResponse(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
			return
		}
		logger.Error("Failed to get book", err)
		response.InternalServerError(c, "Failed to get book")
		return
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", book)
}

// ListBooks handles GET /api/v1/books?limit=20&offset=0
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req model.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	books, total, err := h.service.ListBooks(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to list books", err)
		response.InternalServerError(c, "Failed to list books")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Books retrieved successfully", books, &response.Meta{Total: total})
}
