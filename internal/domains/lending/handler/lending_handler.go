package handler

import (
	"net/http"

	"library-lending-backend/internal/domains/lending/model"
	"library-lending-backend/internal/domains/lending/service"
	"library-lending-backend/internal/shared/middleware"
	"library-lending-backend/internal/shared/response"
	"library-lending-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LendingHandler struct {
	service         service.ServiceInterface
	defaultLoanDays int
	maxLoanDays     int
}

func NewLendingHandler(service service.ServiceInterface, defaultLoanDays, maxLoanDays int) *LendingHandler {
	return &LendingHandler{service: service, defaultLoanDays: defaultLoanDays, maxLoanDays: maxLoanDays}
}

// Checkout handles POST /api/v1/lendings
func (h *LendingHandler) Checkout(c *gin.Context) {
	actorID, ok := middleware.GetStaffID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", err.Error())
		return
	}
	if err := req.Validate(h.maxLoanDays); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	lending, err := h.service.Checkout(c.Request.Context(), actorID,
		uuid.MustParse(req.ReaderID), uuid.MustParse(req.BookID), req.LoanDays(h.defaultLoanDays))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Book checked out successfully", lending)
}

// ReturnBook handles PUT /api/v1/lendings/return/:id
func (h *LendingHandler) ReturnBook(c *gin.Context) {
	actorID, ok := middleware.GetStaffID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	lendingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid lending ID format")
		return
	}

	result, err := h.service.Return(c.Request.Context(), actorID, lendingID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	message := "Book returned successfully"
	if result.WasOverdue {
		message = "Book returned late"
	}
	response.Success(c, http.StatusOK, message, result)
}

// GetLending handles GET /api/v1/lendings/:id
func (h *LendingHandler) GetLending(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid lending ID format")
		return
	}

	lending, err := h.service.GetLending(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Lending retrieved successfully", lending)
}

// ListLendings handles GET /api/v1/lendings
func (h *LendingHandler) ListLendings(c *gin.Context) {
	lendings, err := h.service.ListLendings(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Lendings retrieved successfully", lendings)
}

// ListByReader handles GET /api/v1/lendings/reader/:readerId
func (h *LendingHandler) ListByReader(c *gin.Context) {
	readerID, err := uuid.Parse(c.Param("readerId"))
	if err != nil {
		response.BadRequest(c, "Invalid reader ID format")
		return
	}

	lendings, err := h.service.ListByReader(c.Request.Context(), readerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Lendings retrieved successfully", lendings)
}

// ListByBook handles GET /api/v1/lendings/book/:bookId
func (h *LendingHandler) ListByBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("bookId"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID format")
		return
	}

	lendings, err := h.service.ListByBook(c.Request.Context(), bookID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Lendings retrieved successfully", lendings)
}

func (h *LendingHandler) handleError(c *gin.Context, err error) {
	mapping, ok := model.LookupError(err)
	if !ok {
		logger.Error("Lending request failed", err)
		response.InternalServerError(c, "An unexpected error occurred")
		return
	}

	if mapping.Status == http.StatusBadRequest && mapping.Code == "VALIDATION_ERROR" {
		response.ErrorWithDetails(c, mapping.Status, mapping.Code, mapping.Message, err.Error())
		return
	}
	response.ErrorResponse(c, mapping.Status, mapping.Code, mapping.Message)
}
