package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bienestar-u/eventos-api/internal/api/middleware"
)

// getUserID pulls the authenticated user's ID set by the JWT middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	userID, ok := value.(uint)
	return userID, ok
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
