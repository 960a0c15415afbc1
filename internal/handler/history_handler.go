package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/response"
	"github.com/stemsi/formfill-backend/internal/service"
)

// HistoryHandler serves a user's stored answer sets.
type HistoryHandler struct {
	formService *service.FormService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(formService *service.FormService) *HistoryHandler {
	return &HistoryHandler{formService: formService}
}

// List godoc
// GET /api/v1/history?page=1&per_page=10
// Lists the caller's answer sets, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	entries, total, err := h.formService.ListHistory(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"history": entries}, response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/history/:id
// Returns one stored answer set with its questions.
func (h *HistoryHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	entry, err := h.formService.GetHistory(c.Request.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"history": entry})
}

// Delete godoc
// DELETE /api/v1/history/:id
// Removes one of the caller's answer sets.
func (h *HistoryHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.formService.DeleteHistory(c.Request.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, service.ErrHistoryNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
