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

type EvaluationService interface {
	Evaluate(ctx context.Context, input service.EvaluateInput, secretary domain.User) (domain.Evaluation, domain.Event, error)
	ListByEvent(ctx context.Context, eventID uint) ([]domain.Evaluation, error)
}

type EvaluationHandler struct {
	svc     EvaluationService
	userSvc EventUserService
}

func NewEvaluationHandler(svc EvaluationService, userSvc EventUserService) *EvaluationHandler {
	return &EvaluationHandler{
		svc:     svc,
		userSvc: userSvc,
	}
}

// HandleEvaluateEvent godoc
// @Summary      Record a secretariat decision on an event under review
// @Description  Multipart form: "idEvento", "estado" (aprobado|rechazado),
// @Description  "justificacion" and the "actaAprobacion" file.
// @Tags         evaluations
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  response.EvaluateEventResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/evaluate [post]
func (h *EvaluationHandler) HandleEvaluateEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	secretary, err := h.userSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleEvaluateEvent -> h.userSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	var req request.EvaluateEventRequest
	if err = ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	input := service.EvaluateInput{
		EventID:       req.EventID,
		Outcome:       req.Outcome,
		Justification: req.Justification,
	}

	actaFile, actaReader, err := openFormFile(ctx, "actaAprobacion")
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	if actaReader != nil {
		defer actaReader.Close()
		input.Acta = &service.Upload{Filename: actaFile.Filename, Content: actaReader}
	}

	evaluation, event, err := h.svc.Evaluate(ctx.Request.Context(), input, secretary)
	if err != nil {
		switch {
		case service.IsValidationError(err):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotSecretariat):
			response.RenderErr(ctx, response.ErrPermissionDenied("only secretariat users can evaluate events"))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", req.EventID))
		case errors.Is(err, service.ErrEventNotInReview):
			response.RenderErr(ctx, response.ErrConflict(service.ErrEventNotInReview))
		default:
			err = fmt.Errorf("v1.HandleEvaluateEvent -> h.svc.Evaluate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, response.EvaluateEventResponse{
		Evaluation: evaluation,
		Event:      event,
	})
}

// HandleGetEvaluations godoc
// @Summary      List the evaluation history of an event
// @Tags         evaluations
// @Produce      json
// @Param        eventID  path  int  true  "event ID"
// @Success      200  {array}   domain.Evaluation
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/{eventID}/evaluations [get]
func (h *EvaluationHandler) HandleGetEvaluations(ctx *gin.Context) {
	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	evaluations, err := h.svc.ListByEvent(ctx.Request.Context(), eventID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEvaluations -> h.svc.ListByEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, evaluations)
}
