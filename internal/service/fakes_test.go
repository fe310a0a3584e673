package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bienestar-u/eventos-api/internal/domain"
)

// Function-field fakes: a nil field means the test does not expect that call.

type fakeEventRepo struct {
	createFn           func(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error)
	findByNaturalKeyFn func(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (domain.Event, error)
	getDetailedFn      func(ctx context.Context, id uint) (domain.Event, error)
	listFn             func(ctx context.Context) ([]domain.Event, error)
	listByOrganizerFn  func(ctx context.Context, organizerID uint) ([]domain.Event, error)
	updateFn           func(ctx context.Context, id, organizerID uint, update domain.EventUpdate, orgLinks []domain.OrganizationEvent, aval *domain.Aval, removeAval bool) ([]string, error)
	updateStateFn      func(ctx context.Context, id uint, from, to domain.EventState) (domain.Event, error)
	deleteFn           func(ctx context.Context, id uint) (bool, []string, error)
}

func (f *fakeEventRepo) Create(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error) {
	return f.createFn(ctx, event, installationIDs, orgLinks, aval)
}

func (f *fakeEventRepo) FindByNaturalKey(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (domain.Event, error) {
	if f.findByNaturalKeyFn == nil {
		return domain.Event{}, ErrEventNotFound
	}

	return f.findByNaturalKeyFn(ctx, name, date, startTime, firstInstallationID)
}

func (f *fakeEventRepo) GetDetailed(ctx context.Context, id uint) (domain.Event, error) {
	return f.getDetailedFn(ctx, id)
}

func (f *fakeEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	return f.listFn(ctx)
}

func (f *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	return f.listByOrganizerFn(ctx, organizerID)
}

func (f *fakeEventRepo) Update(ctx context.Context, id, organizerID uint, update domain.EventUpdate, orgLinks []domain.OrganizationEvent, aval *domain.Aval, removeAval bool) ([]string, error) {
	return f.updateFn(ctx, id, organizerID, update, orgLinks, aval, removeAval)
}

func (f *fakeEventRepo) UpdateState(ctx context.Context, id uint, from, to domain.EventState) (domain.Event, error) {
	return f.updateStateFn(ctx, id, from, to)
}

func (f *fakeEventRepo) Delete(ctx context.Context, id uint) (bool, []string, error) {
	return f.deleteFn(ctx, id)
}

type fakeInstallationRepo struct {
	capacities map[uint]int
}

func (f *fakeInstallationRepo) FindByID(ctx context.Context, id uint) (domain.Installation, error) {
	capacity, ok := f.capacities[id]
	if !ok {
		return domain.Installation{}, ErrInstallationNotFound
	}

	return domain.Installation{ID: id, Capacity: capacity}, nil
}

func (f *fakeInstallationRepo) List(ctx context.Context) ([]domain.Installation, error) {
	installations := make([]domain.Installation, 0, len(f.capacities))
	for id, capacity := range f.capacities {
		installations = append(installations, domain.Installation{ID: id, Capacity: capacity})
	}

	return installations, nil
}

type fakeOrgRepo struct {
	organizations map[uint]domain.Organization
}

func (f *fakeOrgRepo) FindByID(ctx context.Context, id uint) (domain.Organization, error) {
	organization, ok := f.organizations[id]
	if !ok {
		return domain.Organization{}, ErrOrganizationNotFound
	}

	return organization, nil
}

type fakeAvalRepo struct {
	aval domain.Aval
	err  error
}

func (f *fakeAvalRepo) FindPrincipalByEvent(ctx context.Context, eventID uint) (domain.Aval, error) {
	return f.aval, f.err
}

// memStore is an in-memory storage.Store recording saves and removals.
type memStore struct {
	mu      sync.Mutex
	n       int
	saveErr error
	saved   []string
	removed []string
}

func (m *memStore) Save(ctx context.Context, dir, originalName string, content io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return "", m.saveErr
	}

	m.n++
	path := fmt.Sprintf("/uploads/%v/blob-%v", dir, m.n)
	m.saved = append(m.saved, path)

	return path, nil
}

func (m *memStore) Remove(ctx context.Context, refPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removed = append(m.removed, refPath)

	return nil
}

// recordingNotifier satisfies both notifier interfaces.
type recordingNotifier struct {
	submitted []domain.Event
	evaluated []domain.Evaluation
}

func (r *recordingNotifier) NotifyOnSubmission(ctx context.Context, event domain.Event) *FanoutReport {
	r.submitted = append(r.submitted, event)

	return &FanoutReport{}
}

func (r *recordingNotifier) NotifyOnEvaluation(ctx context.Context, event domain.Event, evaluation domain.Evaluation) *FanoutReport {
	r.evaluated = append(r.evaluated, evaluation)

	return &FanoutReport{}
}

type fakeNotificationRepo struct {
	mu               sync.Mutex
	created          []domain.Notification
	createErrFor     map[uint]error
	listFn           func(ctx context.Context, recipientID uint) ([]domain.Notification, error)
	markReadFn       func(ctx context.Context, id, recipientID uint) (domain.Notification, error)
	deleteFn         func(ctx context.Context, id, recipientID uint) (bool, error)
	deleteReadBefore func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.createErrFor[notification.RecipientID]; err != nil {
		return domain.Notification{}, err
	}

	notification.ID = uint(len(f.created) + 1)
	f.created = append(f.created, notification)

	return notification, nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error) {
	return f.listFn(ctx, recipientID)
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, recipientID uint) (domain.Notification, error) {
	return f.markReadFn(ctx, id, recipientID)
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, id, recipientID uint) (bool, error) {
	return f.deleteFn(ctx, id, recipientID)
}

func (f *fakeNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleteReadBefore(ctx, cutoff)
}

type fakeUserRepo struct {
	usersByRole map[string][]domain.User
	findRoleErr error
}

func (f *fakeUserRepo) FindByRole(ctx context.Context, role string) ([]domain.User, error) {
	if f.findRoleErr != nil {
		return nil, f.findRoleErr
	}

	return f.usersByRole[role], nil
}

type fakeEvaluationRepo struct {
	createFn func(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error)
	listFn   func(ctx context.Context, eventID uint) ([]domain.Evaluation, error)
}

func (f *fakeEvaluationRepo) CreateWithStateChange(ctx context.Context, evaluation domain.Evaluation, newState domain.EventState) (domain.Evaluation, domain.Event, error) {
	return f.createFn(ctx, evaluation, newState)
}

func (f *fakeEvaluationRepo) ListByEvent(ctx context.Context, eventID uint) ([]domain.Evaluation, error) {
	return f.listFn(ctx, eventID)
}
