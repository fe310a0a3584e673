package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bienestar-u/eventos-api/internal/api/handler/v1/request"
	"github.com/bienestar-u/eventos-api/internal/api/handler/v1/response"
	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/service"
)

const dateLayout = "2006-01-02"

type EventService interface {
	CreateEvent(ctx context.Context, input service.CreateEventInput, organizerID uint) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, input service.UpdateEventInput, organizerID uint) (domain.Event, error)
	SubmitForReview(ctx context.Context, id, organizerID uint) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) (bool, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	GetPrincipalAval(ctx context.Context, eventID uint) (domain.Aval, error)
	ListEvents(ctx context.Context, user domain.User) ([]domain.Event, error)
}

type EventUserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type EventHandler struct {
	svc     EventService
	userSvc EventUserService
}

func NewEventHandler(svc EventService, userSvc EventUserService) *EventHandler {
	return &EventHandler{
		svc:     svc,
		userSvc: userSvc,
	}
}

// HandleCreateEvent godoc
// @Summary      Register a new event
// @Description  Multipart form: "evento" JSON part, optional "tipoAval" value
// @Description  with "avalPdf" file, optional "organizaciones" JSON part with
// @Description  one "certificado_<organizacion_id>" file per linked organization.
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events [post]
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	var req request.CreateEventRequest
	if err := json.Unmarshal([]byte(ctx.PostForm("evento")), &req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid evento payload: %w", err)))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	input := service.CreateEventInput{
		Name:             req.Name,
		Category:         req.Category,
		Date:             date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Location:         req.Location,
		DeclaredCapacity: req.DeclaredCapacity,
		Description:      req.Description,
		InstallationIDs:  req.InstallationIDs,
	}

	var closers []multipart.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()

	avalFile, avalReader, err := openFormFile(ctx, "avalPdf")
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	if avalReader != nil {
		closers = append(closers, avalReader)
		input.AvalType = ctx.PostForm("tipoAval")
		input.AvalFile = &service.Upload{Filename: avalFile.Filename, Content: avalReader}
	}

	orgInputs, orgClosers, err := parseOrganizationParts(ctx)
	closers = append(closers, orgClosers...)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}
	input.Organizations = orgInputs

	event, err := h.svc.CreateEvent(ctx.Request.Context(), input, userID)
	if err != nil {
		h.renderEventErr(ctx, "HandleCreateEvent", err)

		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update a registered event
// @Description  Same multipart layout as create; absent "evento" fields stay
// @Description  untouched, and "delete_aval=true" removes the principal aval.
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Param        eventID  path  int  true  "event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/{eventID} [put]
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateEventRequest
	if raw := ctx.PostForm("evento"); raw != "" {
		if err = json.Unmarshal([]byte(raw), &req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid evento payload: %w", err)))

			return
		}

		if err = req.Validate(); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}
	}

	input := service.UpdateEventInput{
		Name:             req.Name,
		Category:         req.Category,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Location:         req.Location,
		DeclaredCapacity: req.DeclaredCapacity,
		Description:      req.Description,
		InstallationIDs:  req.InstallationIDs,
		RemoveAval:       ctx.PostForm("delete_aval") == "true",
	}

	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}
		input.Date = &date
	}

	var closers []multipart.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()

	avalFile, avalReader, err := openFormFile(ctx, "avalPdf")
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	if avalReader != nil {
		closers = append(closers, avalReader)
		input.AvalFile = &service.Upload{Filename: avalFile.Filename, Content: avalReader}
	}
	if avalType := ctx.PostForm("tipoAval"); avalType != "" {
		input.AvalType = &avalType
	}

	orgInputs, orgClosers, err := parseOrganizationParts(ctx)
	closers = append(closers, orgClosers...)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}
	input.Organizations = orgInputs

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), eventID, input, userID)
	if err != nil {
		h.renderEventErr(ctx, "HandleUpdateEvent", err)

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleSubmitEvent godoc
// @Summary      Submit an event for secretariat review
// @Tags         events
// @Produce      json
// @Param        eventID  path  int  true  "event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/{eventID}/send [post]
func (h *EventHandler) HandleSubmitEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.SubmitForReview(ctx.Request.Context(), eventID, userID)
	if err != nil {
		h.renderEventErr(ctx, "HandleSubmitEvent", err)

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleGetEvent godoc
// @Summary      Get one event with its details
// @Tags         events
// @Produce      json
// @Param        eventID  path  int  true  "event ID"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		h.renderEventErr(ctx, "HandleGetEvent", err)

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleGetEventAval godoc
// @Summary      Get the principal endorsement of an event
// @Tags         events
// @Produce      json
// @Param        eventID  path  int  true  "event ID"
// @Success      200  {object}  domain.Aval
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/{eventID}/aval [get]
func (h *EventHandler) HandleGetEventAval(ctx *gin.Context) {
	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	aval, err := h.svc.GetPrincipalAval(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrAvalNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("aval", "event ID", eventID))

			return
		}

		h.renderEventErr(ctx, "HandleGetEventAval", err)

		return
	}

	ctx.JSON(http.StatusOK, aval)
}

// HandleGetEvents godoc
// @Summary      List events visible to the caller
// @Description  Secretariat users see every event; organizers see their own.
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events [get]
func (h *EventHandler) HandleGetEvents(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized("missing user identity"))

		return
	}

	user, err := h.userSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEvents -> h.userSvc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), user)
	if err != nil {
		h.renderEventErr(ctx, "HandleGetEvents", err)

		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event and its dependent records
// @Tags         events
// @Produce      json
// @Param        eventID  path  int  true  "event ID"
// @Success      200  {object}  response.DeleteEventResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Security     Bearer
// @Router       /events/{eventID} [delete]
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	found, err := h.svc.DeleteEvent(ctx.Request.Context(), eventID)
	if err != nil {
		h.renderEventErr(ctx, "HandleDeleteEvent", err)

		return
	}
	if !found {
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

		return
	}

	ctx.JSON(http.StatusOK, response.DeleteEventResponse{Success: true})
}

func (h *EventHandler) renderEventErr(ctx *gin.Context, op string, err error) {
	switch {
	case service.IsValidationError(err):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", ctx.Param("eventID")))
	case errors.Is(err, service.ErrInstallationNotFound):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrInstallationNotFound))
	case errors.Is(err, service.ErrOrganizationNotFound):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrOrganizationNotFound))
	case errors.Is(err, service.ErrNotEventOwner):
		response.RenderErr(ctx, response.ErrPermissionDenied("only the event organizer can modify this event"))
	case errors.Is(err, service.ErrEventImmutable):
		response.RenderErr(ctx, response.ErrConflict(service.ErrEventImmutable))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

// openFormFile opens an optional multipart file. A missing part is not an
// error; the caller owns closing the returned file.
func openFormFile(ctx *gin.Context, name string) (*multipart.FileHeader, multipart.File, error) {
	header, err := ctx.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}

		return nil, nil, fmt.Errorf("ctx.FormFile(%q) -> %w", name, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("header.Open -> %w", err)
	}

	return header, file, nil
}

func parseOrganizationParts(ctx *gin.Context) ([]service.OrganizationLinkInput, []multipart.File, error) {
	raw := ctx.PostForm("organizaciones")
	if raw == "" {
		return nil, nil, nil
	}

	var links []request.OrganizationLink
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, nil, fmt.Errorf("invalid organizaciones payload: %w", err)
	}

	var (
		inputs  []service.OrganizationLinkInput
		closers []multipart.File
	)

	for _, link := range links {
		if err := link.Validate(); err != nil {
			return nil, closers, err
		}

		input := service.OrganizationLinkInput{
			OrganizationID:        link.OrganizationID,
			Participant:           link.Participant,
			IsLegalRepresentative: link.IsLegalRepresentative,
		}

		header, file, err := openFormFile(ctx, fmt.Sprintf("certificado_%v", link.OrganizationID))
		if err != nil {
			return nil, closers, err
		}
		if file != nil {
			closers = append(closers, file)
			input.Certificate = &service.Upload{Filename: header.Filename, Content: file}
		}

		inputs = append(inputs, input)
	}

	return inputs, closers, nil
}
