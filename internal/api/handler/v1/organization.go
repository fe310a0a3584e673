package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bienestar-u/eventos-api/internal/api/handler/v1/request"
	"github.com/bienestar-u/eventos-api/internal/api/handler/v1/response"
	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/service"
)

type OrganizationService interface {
	CreateOrganization(ctx context.Context, organization domain.Organization) (domain.Organization, error)
	GetOrganization(ctx context.Context, id uint) (domain.Organization, error)
	ListOrganizations(ctx context.Context, ownerID uint) ([]domain.Organization, error)
	UpdateOrganization(ctx context.Context, organization domain.Organization, ownerID uint) (domain.Organization, error)
}

type OrganizationHandler struct {
	svc OrganizationService
}

func NewOrganizationHandler(svc OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		svc: svc,
	}
}

// HandleCreateOrganization godoc
// @Summary      Register an external organization
// @Tags         organizations
// @Produce      json
// @Param        request  body  request.CreateOrganizationRequest  true  "request body"
// @Success      201  {object}  domain.Organization
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /organizations [post]
func (h *OrganizationHandler) HandleCreateOrganization(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	var req request.CreateOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	organization, err := h.svc.CreateOrganization(ctx.Request.Context(), domain.Organization{
		Name:                req.Name,
		LegalRepresentative: req.LegalRepresentative,
		Sector:              req.Sector,
		Phone:               req.Phone,
		Email:               req.Email,
		OwnerID:             userID,
	})
	if err != nil {
		if service.IsValidationError(err) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		err = fmt.Errorf("v1.HandleCreateOrganization -> h.svc.CreateOrganization -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, organization)
}

// HandleGetOrganizations godoc
// @Summary      List the caller's organizations
// @Tags         organizations
// @Produce      json
// @Success      200  {array}   domain.Organization
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /organizations [get]
func (h *OrganizationHandler) HandleGetOrganizations(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	organizations, err := h.svc.ListOrganizations(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetOrganizations -> h.svc.ListOrganizations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, organizations)
}

// HandleGetOrganization godoc
// @Summary      Get one organization
// @Tags         organizations
// @Produce      json
// @Param        organizationID  path  int  true  "organization ID"
// @Success      200  {object}  domain.Organization
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /organizations/{organizationID} [get]
func (h *OrganizationHandler) HandleGetOrganization(ctx *gin.Context) {
	organizationID, err := parseIDParam(ctx, "organizationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	organization, err := h.svc.GetOrganization(ctx.Request.Context(), organizationID)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("organization", "ID", organizationID))

			return
		}

		err = fmt.Errorf("v1.HandleGetOrganization -> h.svc.GetOrganization -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, organization)
}

// HandleUpdateOrganization godoc
// @Summary      Update one of the caller's organizations
// @Tags         organizations
// @Produce      json
// @Param        organizationID  path  int  true  "organization ID"
// @Param        request  body  request.UpdateOrganizationRequest  true  "request body"
// @Success      200  {object}  domain.Organization
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /organizations/{organizationID} [put]
func (h *OrganizationHandler) HandleUpdateOrganization(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	organizationID, err := parseIDParam(ctx, "organizationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateOrganizationRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	organization, err := h.svc.UpdateOrganization(ctx.Request.Context(), domain.Organization{
		ID:                  organizationID,
		Name:                req.Name,
		LegalRepresentative: req.LegalRepresentative,
		Sector:              req.Sector,
		Phone:               req.Phone,
		Email:               req.Email,
	}, userID)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("organization", "ID", organizationID))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateOrganization -> h.svc.UpdateOrganization -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, organization)
}
