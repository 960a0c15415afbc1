package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/response"
	"github.com/stemsi/formfill-backend/internal/service"
	"github.com/stemsi/formfill-backend/internal/validator"
)

// AdminUserHandler serves account management for admins.
type AdminUserHandler struct {
	service *service.AdminUserService
	log     zerolog.Logger
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(service *service.AdminUserService, log zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		log:     log.With().Str("component", "admin_user_handler").Logger(),
	}
}

// ListUsers godoc
// GET /api/v1/admin/users?role=admin&page=1&per_page=20
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	role := c.Query("role")
	if role != "" && role != model.RoleAdmin && role != model.RoleUser {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"role": "role harus salah satu dari [admin user]",
		})
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), role, page, perPage)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("List users failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, response.NewPagination(page, perPage, total))
}

// UpdateRole godoc
// PATCH /api/v1/admin/users/:id/role
func (h *AdminUserHandler) UpdateRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.service.UpdateRole(c.Request.Context(), middleware.GetClaims(c).UserID, id, req.Role)
	if err != nil {
		h.failAccount(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

// DeleteUser godoc
// DELETE /api/v1/admin/users/:id
func (h *AdminUserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), middleware.GetClaims(c).UserID, id); err != nil {
		h.failAccount(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *AdminUserHandler) failAccount(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfAction):
		response.Fail(c, http.StatusConflict, response.ErrSelfAction)
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Account update failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
