package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bienestar-u/eventos-api/internal/api/handler/v1/response"
	"github.com/bienestar-u/eventos-api/internal/domain"
)

type InstallationService interface {
	ListInstallations(ctx context.Context) ([]domain.Installation, error)
}

type InstallationHandler struct {
	svc InstallationService
}

func NewInstallationHandler(svc InstallationService) *InstallationHandler {
	return &InstallationHandler{
		svc: svc,
	}
}

// HandleGetInstallations godoc
// @Summary      List the bookable installations
// @Tags         installations
// @Produce      json
// @Success      200  {array}   domain.Installation
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /installations [get]
func (h *InstallationHandler) HandleGetInstallations(ctx *gin.Context) {
	installations, err := h.svc.ListInstallations(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetInstallations -> h.svc.ListInstallations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, installations)
}
