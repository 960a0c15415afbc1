package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/response"
	"github.com/stemsi/formfill-backend/internal/service"
)

// UserLookup loads the current account behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id int) (*model.User, error)
}

// RequireRole lets the request through when the caller currently holds one
// of roles. The role is read from storage rather than the token, so a demoted
// admin loses access on the next request. Must run after RequireUserJWT.
func RequireRole(users UserLookup, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		u, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		if !slices.Contains(roles, u.Role) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}
