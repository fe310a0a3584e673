package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrNotEventOwner     = dao.ErrNotEventOwner
	ErrEventImmutable    = dao.ErrEventImmutable
	ErrIllegalTransition = dao.ErrIllegalTransition
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event, installationIDs []uint, orgLinks []dao.OrganizationEvent, aval *dao.Aval) (dao.Event, error)
	FindByNaturalKey(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (dao.Event, error)
	FindDetailed(ctx context.Context, id uint) (dao.Event, error)
	List(ctx context.Context) ([]dao.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]dao.Event, error)
	UpdateWithAssociations(ctx context.Context, id, organizerID uint, values map[string]interface{}, installationIDs []uint, orgLinks []dao.OrganizationEvent, aval *dao.Aval, removeAval bool) ([]string, error)
	UpdateState(ctx context.Context, id uint, from, to string) (dao.Event, error)
	Delete(ctx context.Context, id uint) (bool, []string, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error) {
	daoLinks := make([]dao.OrganizationEvent, len(orgLinks))
	for i, link := range orgLinks {
		daoLinks[i] = orgLinkDomainToDao(link)
	}

	var daoAval *dao.Aval
	if aval != nil {
		a := avalDomainToDao(*aval)
		daoAval = &a
	}

	created, err := r.dao.Insert(ctx, r.domainToDao(event), installationIDs, daoLinks, daoAval)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.GetDetailed(ctx, created.ID)
}

func (r *EventRepository) FindByNaturalKey(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (domain.Event, error) {
	found, err := r.dao.FindByNaturalKey(ctx, name, date, startTime, firstInstallationID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByNaturalKey -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) GetDetailed(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindDetailed(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindDetailed -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	found, err := r.dao.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByOrganizer -> %w", err)
	}

	return r.daosToDomain(found), nil
}

// Update applies the partial update plus association changes atomically and
// returns the blob paths displaced by file replacements.
func (r *EventRepository) Update(
	ctx context.Context,
	id uint,
	organizerID uint,
	update domain.EventUpdate,
	orgLinks []domain.OrganizationEvent,
	aval *domain.Aval,
	removeAval bool,
) ([]string, error) {
	values := updateValues(update)

	daoLinks := make([]dao.OrganizationEvent, len(orgLinks))
	for i, link := range orgLinks {
		daoLinks[i] = orgLinkDomainToDao(link)
	}

	var daoAval *dao.Aval
	if aval != nil {
		a := avalDomainToDao(*aval)
		daoAval = &a
	}

	obsolete, err := r.dao.UpdateWithAssociations(ctx, id, organizerID, values, update.InstallationIDs, daoLinks, daoAval, removeAval)
	if err != nil {
		return nil, fmt.Errorf("r.dao.UpdateWithAssociations -> %w", err)
	}

	return obsolete, nil
}

func (r *EventRepository) UpdateState(ctx context.Context, id uint, from, to domain.EventState) (domain.Event, error) {
	updated, err := r.dao.UpdateState(ctx, id, string(from), string(to))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateState -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) (bool, []string, error) {
	found, obsolete, err := r.dao.Delete(ctx, id)
	if err != nil {
		return false, nil, fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return found, obsolete, nil
}

func updateValues(update domain.EventUpdate) map[string]interface{} {
	values := map[string]interface{}{}

	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Category != nil {
		values["category"] = string(*update.Category)
	}
	if update.Date != nil {
		values["date"] = *update.Date
	}
	if update.StartTime != nil {
		values["start_time"] = *update.StartTime
	}
	if update.EndTime != nil {
		values["end_time"] = *update.EndTime
	}
	if update.Location != nil {
		values["location"] = *update.Location
	}
	if update.DeclaredCapacity != nil {
		values["declared_capacity"] = *update.DeclaredCapacity
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}

	return values
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:               e.ID,
		OrganizerID:      e.OrganizerID,
		Name:             e.Name,
		Category:         string(e.Category),
		Date:             e.Date,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Location:         e.Location,
		DeclaredCapacity: e.DeclaredCapacity,
		Description:      e.Description,
		State:            string(e.State),
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:               e.ID,
		OrganizerID:      e.OrganizerID,
		Name:             e.Name,
		Category:         domain.EventCategory(e.Category),
		Date:             e.Date,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Location:         e.Location,
		DeclaredCapacity: e.DeclaredCapacity,
		Description:      e.Description,
		State:            domain.EventState(e.State),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}

	if e.Organizer.ID != 0 {
		event.Organizer = domain.User{
			ID:    e.Organizer.ID,
			Email: e.Organizer.Email,
			Name:  e.Organizer.Name,
			Role:  e.Organizer.Role,
		}
	}

	if len(e.Installations) > 0 {
		event.Installations = make([]domain.Installation, len(e.Installations))
		for i, installation := range e.Installations {
			event.Installations[i] = installationDaoToDomain(installation)
		}
	}

	for _, a := range e.Avales {
		if a.Principal {
			aval := avalDaoToDomain(a)
			event.PrincipalAval = &aval
			break
		}
	}

	if len(e.OrganizationLinks) > 0 {
		event.OrganizationLinks = make([]domain.OrganizationEvent, len(e.OrganizationLinks))
		for i, link := range e.OrganizationLinks {
			event.OrganizationLinks[i] = orgLinkDaoToDomain(link)
		}
	}

	return event
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, len(events))
	for i, e := range events {
		result[i] = r.daoToDomain(e)
	}

	return result
}

func avalDomainToDao(a domain.Aval) dao.Aval {
	return dao.Aval{
		UserID:    a.UserID,
		EventID:   a.EventID,
		FilePath:  a.FilePath,
		Principal: a.Principal,
		Type:      string(a.Type),
	}
}

func avalDaoToDomain(a dao.Aval) domain.Aval {
	return domain.Aval{
		UserID:    a.UserID,
		EventID:   a.EventID,
		FilePath:  a.FilePath,
		Principal: a.Principal,
		Type:      domain.AvalType(a.Type),
	}
}

func orgLinkDaoToDomain(l dao.OrganizationEvent) domain.OrganizationEvent {
	return domain.OrganizationEvent{
		EventID:               l.EventID,
		OrganizationID:        l.OrganizationID,
		Participant:           l.Participant,
		IsLegalRepresentative: l.IsLegalRepresentative,
		CertificatePath:       l.CertificatePath,
	}
}

func orgLinkDomainToDao(l domain.OrganizationEvent) dao.OrganizationEvent {
	return dao.OrganizationEvent{
		EventID:               l.EventID,
		OrganizationID:        l.OrganizationID,
		Participant:           l.Participant,
		IsLegalRepresentative: l.IsLegalRepresentative,
		CertificatePath:       l.CertificatePath,
	}
}
