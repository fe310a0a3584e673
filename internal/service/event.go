package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository"
	"github.com/bienestar-u/eventos-api/internal/storage"
)

var (
	ErrEventNotFound        = repository.ErrEventNotFound
	ErrNotEventOwner        = repository.ErrNotEventOwner
	ErrEventImmutable       = repository.ErrEventImmutable
	ErrOrganizationNotFound = repository.ErrOrganizationNotFound
	ErrAvalNotFound         = repository.ErrAvalNotFound
)

const timeLayout = "15:04"

// Upload is a file received from the client, storage-agnostic.
type Upload struct {
	Filename string
	Content  io.Reader
}

type OrganizationLinkInput struct {
	OrganizationID        uint
	Participant           string
	IsLegalRepresentative bool
	Certificate           *Upload
}

type CreateEventInput struct {
	Name             string
	Category         string
	Date             time.Time
	StartTime        string
	EndTime          string
	Location         string
	DeclaredCapacity int
	Description      string
	InstallationIDs  []uint
	AvalType         string
	AvalFile         *Upload
	Organizations    []OrganizationLinkInput
}

type UpdateEventInput struct {
	Name             *string
	Category         *string
	Date             *time.Time
	StartTime        *string
	EndTime          *string
	Location         *string
	DeclaredCapacity *int
	Description      *string
	InstallationIDs  []uint
	Organizations    []OrganizationLinkInput
	AvalType         *string
	AvalFile         *Upload
	RemoveAval       bool
}

type EventRepository interface {
	Create(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error)
	FindByNaturalKey(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (domain.Event, error)
	GetDetailed(ctx context.Context, id uint) (domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error)
	Update(ctx context.Context, id, organizerID uint, update domain.EventUpdate, orgLinks []domain.OrganizationEvent, aval *domain.Aval, removeAval bool) ([]string, error)
	UpdateState(ctx context.Context, id uint, from, to domain.EventState) (domain.Event, error)
	Delete(ctx context.Context, id uint) (bool, []string, error)
}

type CapacityResolver interface {
	SumCapacities(ctx context.Context, ids []uint) (int, error)
}

type EventOrganizationRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Organization, error)
}

type SubmissionNotifier interface {
	NotifyOnSubmission(ctx context.Context, event domain.Event) *FanoutReport
}

type AvalRepository interface {
	FindPrincipalByEvent(ctx context.Context, eventID uint) (domain.Aval, error)
}

// EventService coordinates the event lifecycle: validation, capacity
// feasibility, the transactional creation/update of an event with its
// dependent records, and the registrado -> enRevision transition.
type EventService struct {
	repo       EventRepository
	capacities CapacityResolver
	orgRepo    EventOrganizationRepository
	avalRepo   AvalRepository
	notifier   SubmissionNotifier
	store      storage.Store
}

func NewEventService(repo EventRepository, capacities CapacityResolver, orgRepo EventOrganizationRepository, avalRepo AvalRepository, notifier SubmissionNotifier, store storage.Store) *EventService {
	return &EventService{
		repo:       repo,
		capacities: capacities,
		orgRepo:    orgRepo,
		avalRepo:   avalRepo,
		notifier:   notifier,
		store:      store,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput, organizerID uint) (domain.Event, error) {
	if err := validateCreateInput(input); err != nil {
		return domain.Event{}, err
	}

	if err := s.checkCapacity(ctx, input.DeclaredCapacity, input.InstallationIDs); err != nil {
		return domain.Event{}, err
	}

	// De-dup guard on the natural key visible to the UI: a retried submit of
	// the same form returns the existing event instead of inserting twice.
	existing, err := s.repo.FindByNaturalKey(ctx, input.Name, input.Date, input.StartTime, input.InstallationIDs[0])
	if err == nil {
		return s.repo.GetDetailed(ctx, existing.ID)
	}
	if !errors.Is(err, ErrEventNotFound) {
		return domain.Event{}, fmt.Errorf("s.repo.FindByNaturalKey -> %w", err)
	}

	links, savedPaths, err := s.resolveOrganizationLinks(ctx, input.Organizations)
	if err != nil {
		s.removeBlobs(ctx, savedPaths)
		return domain.Event{}, err
	}

	var aval *domain.Aval
	if input.AvalFile != nil {
		avalType, err := parseAvalType(input.AvalType)
		if err != nil {
			s.removeBlobs(ctx, savedPaths)
			return domain.Event{}, err
		}

		path, err := s.store.Save(ctx, "avales", input.AvalFile.Filename, input.AvalFile.Content)
		if err != nil {
			s.removeBlobs(ctx, savedPaths)
			return domain.Event{}, fmt.Errorf("s.store.Save -> %w", err)
		}
		savedPaths = append(savedPaths, path)

		aval = &domain.Aval{
			UserID:    organizerID,
			FilePath:  path,
			Principal: true,
			Type:      avalType,
		}
	}

	event := domain.Event{
		OrganizerID:      organizerID,
		Name:             input.Name,
		Category:         domain.EventCategory(input.Category),
		Date:             input.Date,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		Location:         input.Location,
		DeclaredCapacity: input.DeclaredCapacity,
		Description:      input.Description,
		State:            domain.StateRegistered,
	}

	created, err := s.repo.Create(ctx, event, input.InstallationIDs, links, aval)
	if err != nil {
		// The transaction rolled back; the blobs written above are orphans.
		s.removeBlobs(ctx, savedPaths)
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id uint, input UpdateEventInput, organizerID uint) (domain.Event, error) {
	current, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.GetDetailed -> %w", err)
	}

	if current.OrganizerID != organizerID {
		return domain.Event{}, ErrNotEventOwner
	}
	if current.State == domain.StateApproved {
		return domain.Event{}, ErrEventImmutable
	}

	if err = validateUpdateInput(current, input); err != nil {
		return domain.Event{}, err
	}

	capacity := current.DeclaredCapacity
	if input.DeclaredCapacity != nil {
		capacity = *input.DeclaredCapacity
	}
	installationIDs := input.InstallationIDs
	if installationIDs == nil {
		installationIDs = make([]uint, len(current.Installations))
		for i, installation := range current.Installations {
			installationIDs[i] = installation.ID
		}
	}
	if len(installationIDs) == 0 {
		return domain.Event{}, validationErr("instalaciones", "at least one installation is required")
	}
	if err = s.checkCapacity(ctx, capacity, installationIDs); err != nil {
		return domain.Event{}, err
	}

	links, savedPaths, err := s.resolveOrganizationLinks(ctx, input.Organizations)
	if err != nil {
		s.removeBlobs(ctx, savedPaths)
		return domain.Event{}, err
	}

	var aval *domain.Aval
	if input.AvalFile != nil || input.AvalType != nil {
		avalType := domain.AvalProgramDirector
		if input.AvalType != nil {
			avalType, err = parseAvalType(*input.AvalType)
			if err != nil {
				s.removeBlobs(ctx, savedPaths)
				return domain.Event{}, err
			}
		} else if current.PrincipalAval != nil {
			avalType = current.PrincipalAval.Type
		}

		aval = &domain.Aval{
			UserID:    organizerID,
			Principal: true,
			Type:      avalType,
		}

		if input.AvalFile != nil {
			path, err := s.store.Save(ctx, "avales", input.AvalFile.Filename, input.AvalFile.Content)
			if err != nil {
				s.removeBlobs(ctx, savedPaths)
				return domain.Event{}, fmt.Errorf("s.store.Save -> %w", err)
			}
			savedPaths = append(savedPaths, path)
			aval.FilePath = path
		}
	}

	update := domain.EventUpdate{
		Name:             input.Name,
		Date:             input.Date,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		Location:         input.Location,
		DeclaredCapacity: input.DeclaredCapacity,
		Description:      input.Description,
		InstallationIDs:  input.InstallationIDs,
	}
	if input.Category != nil {
		category := domain.EventCategory(*input.Category)
		update.Category = &category
	}

	obsolete, err := s.repo.Update(ctx, id, organizerID, update, links, aval, input.RemoveAval)
	if err != nil {
		s.removeBlobs(ctx, savedPaths)
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	// Old blobs are deleted only after the new paths are durably recorded.
	s.removeBlobs(ctx, obsolete)

	return s.repo.GetDetailed(ctx, id)
}

// SubmitForReview moves a registered event into review and notifies the
// secretariat. The fan-out is best effort and runs after the state change
// has committed.
func (s *EventService) SubmitForReview(ctx context.Context, id, organizerID uint) (domain.Event, error) {
	current, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.GetDetailed -> %w", err)
	}

	if current.OrganizerID != organizerID {
		return domain.Event{}, ErrNotEventOwner
	}

	_, err = s.repo.UpdateState(ctx, id, domain.StateRegistered, domain.StateUnderReview)
	if err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			return domain.Event{}, validationErr("estado", fmt.Sprintf("transition not allowed from %q", current.State))
		}

		return domain.Event{}, fmt.Errorf("s.repo.UpdateState -> %w", err)
	}

	event, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.GetDetailed -> %w", err)
	}

	s.notifier.NotifyOnSubmission(ctx, event)

	return event, nil
}

// DeleteEvent hard-deletes the event and its dependent records. Deleting a
// missing event reports false rather than failing.
func (s *EventService) DeleteEvent(ctx context.Context, id uint) (bool, error) {
	found, obsolete, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.removeBlobs(ctx, obsolete)

	return found, nil
}

// GetPrincipalAval returns the authoritative endorsement for an event.
func (s *EventService) GetPrincipalAval(ctx context.Context, eventID uint) (domain.Aval, error) {
	if _, err := s.repo.GetDetailed(ctx, eventID); err != nil {
		return domain.Aval{}, fmt.Errorf("s.repo.GetDetailed -> %w", err)
	}

	aval, err := s.avalRepo.FindPrincipalByEvent(ctx, eventID)
	if err != nil {
		return domain.Aval{}, fmt.Errorf("s.avalRepo.FindPrincipalByEvent -> %w", err)
	}

	return aval, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.GetDetailed(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.GetDetailed -> %w", err)
	}

	return event, nil
}

// ListEvents returns every event for the secretariat and only the caller's
// own events for organizers.
func (s *EventService) ListEvents(ctx context.Context, user domain.User) ([]domain.Event, error) {
	if user.Role == domain.RoleSecretariat {
		events, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("s.repo.List -> %w", err)
		}

		return events, nil
	}

	events, err := s.repo.ListByOrganizer(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByOrganizer -> %w", err)
	}

	return events, nil
}

func (s *EventService) checkCapacity(ctx context.Context, declared int, installationIDs []uint) error {
	sum, err := s.capacities.SumCapacities(ctx, installationIDs)
	if err != nil {
		return fmt.Errorf("s.capacities.SumCapacities -> %w", err)
	}

	if declared > sum {
		return validationErr("capacidad",
			fmt.Sprintf("declared capacity %v exceeds the total installation capacity %v", declared, sum))
	}

	return nil
}

// resolveOrganizationLinks validates each organization link, backfills the
// participant from the organization's registered legal representative when
// applicable, and stores any supplied certificate files. The returned paths
// are the blobs written here, for cleanup if the enclosing operation fails.
func (s *EventService) resolveOrganizationLinks(ctx context.Context, inputs []OrganizationLinkInput) ([]domain.OrganizationEvent, []string, error) {
	var (
		links      []domain.OrganizationEvent
		savedPaths []string
	)

	for _, input := range inputs {
		organization, err := s.orgRepo.FindByID(ctx, input.OrganizationID)
		if err != nil {
			return nil, savedPaths, fmt.Errorf("s.orgRepo.FindByID -> %w", err)
		}

		participant := input.Participant
		isLegalRep := "no"
		if input.IsLegalRepresentative {
			isLegalRep = "si"
			if participant == "" {
				participant = organization.LegalRepresentative
			}
			if participant == "" {
				return nil, savedPaths, validationErr("participante",
					fmt.Sprintf("organization %v has no registered legal representative", organization.ID))
			}
		} else if participant == "" {
			return nil, savedPaths, validationErr("participante",
				fmt.Sprintf("a participant name is required for organization %v", organization.ID))
		}

		link := domain.OrganizationEvent{
			OrganizationID:        organization.ID,
			Participant:           participant,
			IsLegalRepresentative: isLegalRep,
		}

		if input.Certificate != nil {
			path, err := s.store.Save(ctx, "certificados", input.Certificate.Filename, input.Certificate.Content)
			if err != nil {
				return nil, savedPaths, fmt.Errorf("s.store.Save -> %w", err)
			}
			savedPaths = append(savedPaths, path)
			link.CertificatePath = path
		}

		links = append(links, link)
	}

	return links, savedPaths, nil
}

func (s *EventService) removeBlobs(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.store.Remove(ctx, path); err != nil {
			zap.L().Warn("failed to remove blob", zap.String("path", path), zap.Error(err))
		}
	}
}

func validateCreateInput(input CreateEventInput) error {
	if input.Name == "" {
		return validationErr("nombre", "name is required")
	}
	if err := validateCategory(input.Category); err != nil {
		return err
	}
	if input.Date.IsZero() {
		return validationErr("fecha", "date is required")
	}
	if input.StartTime == "" {
		return validationErr("hora_inicio", "start time is required")
	}
	if input.EndTime == "" {
		return validationErr("hora_fin", "end time is required")
	}
	if err := validateSchedule(input.Date, input.StartTime, input.EndTime); err != nil {
		return err
	}
	if input.DeclaredCapacity < 1 {
		return validationErr("capacidad", "declared capacity must be at least 1")
	}
	if len(input.InstallationIDs) == 0 {
		return validationErr("instalaciones", "at least one installation is required")
	}

	return nil
}

func validateUpdateInput(current domain.Event, input UpdateEventInput) error {
	if input.Name != nil && *input.Name == "" {
		return validationErr("nombre", "name cannot be empty")
	}
	if input.Category != nil {
		if err := validateCategory(*input.Category); err != nil {
			return err
		}
	}
	if input.DeclaredCapacity != nil && *input.DeclaredCapacity < 1 {
		return validationErr("capacidad", "declared capacity must be at least 1")
	}

	if input.Date != nil || input.StartTime != nil || input.EndTime != nil {
		date := current.Date
		if input.Date != nil {
			date = *input.Date
		}
		start := current.StartTime
		if input.StartTime != nil {
			start = *input.StartTime
		}
		end := current.EndTime
		if input.EndTime != nil {
			end = *input.EndTime
		}

		return validateSchedule(date, start, end)
	}

	return nil
}

func validateCategory(category string) error {
	switch domain.EventCategory(category) {
	case domain.CategoryAcademic, domain.CategoryRecreational:
		return nil
	default:
		return validationErr("categoria", fmt.Sprintf("category must be %q or %q",
			domain.CategoryAcademic, domain.CategoryRecreational))
	}
}

func validateSchedule(date time.Time, start, end string) error {
	startAt, err := time.Parse(timeLayout, start)
	if err != nil {
		return validationErr("hora_inicio", "start time must be HH:MM")
	}
	endAt, err := time.Parse(timeLayout, end)
	if err != nil {
		return validationErr("hora_fin", "end time must be HH:MM")
	}
	if !endAt.After(startAt) {
		return validationErr("hora_fin", "end time must be after start time")
	}

	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return validationErr("fecha", "date cannot be in the past")
	}

	return nil
}

func parseAvalType(avalType string) (domain.AvalType, error) {
	switch domain.AvalType(avalType) {
	case domain.AvalProgramDirector, domain.AvalTeachingDirector:
		return domain.AvalType(avalType), nil
	default:
		return "", validationErr("tipoAval", fmt.Sprintf("aval type must be %q or %q",
			domain.AvalProgramDirector, domain.AvalTeachingDirector))
	}
}
