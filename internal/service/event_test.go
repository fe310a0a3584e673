package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bienestar-u/eventos-api/internal/domain"
	"github.com/bienestar-u/eventos-api/internal/repository"
)

func validCreateInput() CreateEventInput {
	return CreateEventInput{
		Name:             "Semana de la Ciencia",
		Category:         "academico",
		Date:             time.Now().AddDate(0, 0, 14),
		StartTime:        "09:00",
		EndTime:          "12:00",
		Location:         "Campus Norte",
		DeclaredCapacity: 80,
		InstallationIDs:  []uint{1, 2},
	}
}

func newEventService(repo *fakeEventRepo, capacities map[uint]int, orgs map[uint]domain.Organization, store *memStore) (*EventService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewEventService(
		repo,
		NewInstallationService(&fakeInstallationRepo{capacities: capacities}),
		&fakeOrgRepo{organizations: orgs},
		&fakeAvalRepo{},
		notifier,
		store,
	)

	return svc, notifier
}

func TestCreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateEventInput)
		wantField string
	}{
		{
			name:      "missing name",
			mutate:    func(in *CreateEventInput) { in.Name = "" },
			wantField: "nombre",
		},
		{
			name:      "unknown category",
			mutate:    func(in *CreateEventInput) { in.Category = "deportivo" },
			wantField: "categoria",
		},
		{
			name:      "past date",
			mutate:    func(in *CreateEventInput) { in.Date = time.Now().AddDate(0, 0, -1) },
			wantField: "fecha",
		},
		{
			name:      "end before start",
			mutate:    func(in *CreateEventInput) { in.StartTime, in.EndTime = "15:00", "14:00" },
			wantField: "hora_fin",
		},
		{
			name:      "end equals start",
			mutate:    func(in *CreateEventInput) { in.StartTime, in.EndTime = "15:00", "15:00" },
			wantField: "hora_fin",
		},
		{
			name:      "malformed start time",
			mutate:    func(in *CreateEventInput) { in.StartTime = "9am" },
			wantField: "hora_inicio",
		},
		{
			name:      "zero capacity",
			mutate:    func(in *CreateEventInput) { in.DeclaredCapacity = 0 },
			wantField: "capacidad",
		},
		{
			name:      "no installations",
			mutate:    func(in *CreateEventInput) { in.InstallationIDs = nil },
			wantField: "instalaciones",
		},
		{
			name:      "capacity exceeds installations",
			mutate:    func(in *CreateEventInput) { in.DeclaredCapacity = 500 },
			wantField: "capacidad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newEventService(&fakeEventRepo{}, map[uint]int{1: 50, 2: 60}, nil, &memStore{})

			input := validCreateInput()
			tt.mutate(&input)

			_, err := svc.CreateEvent(context.Background(), input, 7)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestCreateEvent_UnknownInstallation(t *testing.T) {
	svc, _ := newEventService(&fakeEventRepo{}, map[uint]int{1: 50}, nil, &memStore{})

	input := validCreateInput()

	_, err := svc.CreateEvent(context.Background(), input, 7)
	assert.ErrorIs(t, err, ErrInstallationNotFound)
}

func TestCreateEvent_ReturnsExistingOnResubmit(t *testing.T) {
	existing := domain.Event{ID: 42, Name: "Semana de la Ciencia"}
	repo := &fakeEventRepo{
		findByNaturalKeyFn: func(ctx context.Context, name string, date time.Time, startTime string, firstInstallationID uint) (domain.Event, error) {
			return domain.Event{ID: 42}, nil
		},
		getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) {
			require.Equal(t, uint(42), id)
			return existing, nil
		},
		createFn: func(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error) {
			t.Fatal("Create must not be called for a duplicate submission")
			return domain.Event{}, nil
		},
	}
	svc, _ := newEventService(repo, map[uint]int{1: 50, 2: 60}, nil, &memStore{})

	event, err := svc.CreateEvent(context.Background(), validCreateInput(), 7)
	require.NoError(t, err)
	assert.Equal(t, existing, event)
}

func TestCreateEvent_PersistsLinksAndAval(t *testing.T) {
	var (
		gotEvent domain.Event
		gotIDs   []uint
		gotLinks []domain.OrganizationEvent
		gotAval  *domain.Aval
	)

	repo := &fakeEventRepo{
		createFn: func(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error) {
			gotEvent, gotIDs, gotLinks, gotAval = event, installationIDs, orgLinks, aval
			event.ID = 9
			return event, nil
		},
	}
	store := &memStore{}
	orgs := map[uint]domain.Organization{
		3: {ID: 3, Name: "Cruz Roja", LegalRepresentative: "Maria Perez"},
	}
	svc, _ := newEventService(repo, map[uint]int{1: 50, 2: 60}, orgs, store)

	input := validCreateInput()
	input.AvalType = "directorPrograma"
	input.AvalFile = &Upload{Filename: "aval.pdf", Content: strings.NewReader("pdf")}
	input.Organizations = []OrganizationLinkInput{
		{OrganizationID: 3, IsLegalRepresentative: true, Certificate: &Upload{Filename: "cert.pdf", Content: strings.NewReader("pdf")}},
	}

	event, err := svc.CreateEvent(context.Background(), input, 7)
	require.NoError(t, err)

	assert.Equal(t, uint(9), event.ID)
	assert.Equal(t, uint(7), gotEvent.OrganizerID)
	assert.Equal(t, domain.StateRegistered, gotEvent.State)
	assert.Equal(t, []uint{1, 2}, gotIDs)

	require.Len(t, gotLinks, 1)
	assert.Equal(t, "Maria Perez", gotLinks[0].Participant)
	assert.Equal(t, "si", gotLinks[0].IsLegalRepresentative)
	assert.NotEmpty(t, gotLinks[0].CertificatePath)

	require.NotNil(t, gotAval)
	assert.True(t, gotAval.Principal)
	assert.Equal(t, domain.AvalProgramDirector, gotAval.Type)
	assert.NotEmpty(t, gotAval.FilePath)

	assert.Len(t, store.saved, 2)
	assert.Empty(t, store.removed)
}

func TestCreateEvent_FailedTransactionCleansBlobs(t *testing.T) {
	repo := &fakeEventRepo{
		createFn: func(ctx context.Context, event domain.Event, installationIDs []uint, orgLinks []domain.OrganizationEvent, aval *domain.Aval) (domain.Event, error) {
			return domain.Event{}, errors.New("tx failed")
		},
	}
	store := &memStore{}
	svc, _ := newEventService(repo, map[uint]int{1: 50, 2: 60}, nil, store)

	input := validCreateInput()
	input.AvalType = "directorDocencia"
	input.AvalFile = &Upload{Filename: "aval.pdf", Content: strings.NewReader("pdf")}

	_, err := svc.CreateEvent(context.Background(), input, 7)
	require.Error(t, err)

	assert.Equal(t, store.saved, store.removed)
}

func TestCreateEvent_LegalRepresentativeMissing(t *testing.T) {
	orgs := map[uint]domain.Organization{3: {ID: 3, Name: "ONG sin rep"}}
	svc, _ := newEventService(&fakeEventRepo{}, map[uint]int{1: 50, 2: 60}, orgs, &memStore{})

	input := validCreateInput()
	input.Organizations = []OrganizationLinkInput{{OrganizationID: 3, IsLegalRepresentative: true}}

	_, err := svc.CreateEvent(context.Background(), input, 7)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "participante", ve.Field)
}

func TestUpdateEvent_OwnershipAndState(t *testing.T) {
	current := domain.Event{
		ID:          5,
		OrganizerID: 7,
		State:       domain.StateRegistered,
	}

	t.Run("not the owner", func(t *testing.T) {
		repo := &fakeEventRepo{
			getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) { return current, nil },
		}
		svc, _ := newEventService(repo, nil, nil, &memStore{})

		_, err := svc.UpdateEvent(context.Background(), 5, UpdateEventInput{}, 99)
		assert.ErrorIs(t, err, ErrNotEventOwner)
	})

	t.Run("approved events are immutable", func(t *testing.T) {
		approved := current
		approved.State = domain.StateApproved
		repo := &fakeEventRepo{
			getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) { return approved, nil },
		}
		svc, _ := newEventService(repo, nil, nil, &memStore{})

		_, err := svc.UpdateEvent(context.Background(), 5, UpdateEventInput{}, 7)
		assert.ErrorIs(t, err, ErrEventImmutable)
	})

	t.Run("missing event", func(t *testing.T) {
		repo := &fakeEventRepo{
			getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) {
				return domain.Event{}, ErrEventNotFound
			},
		}
		svc, _ := newEventService(repo, nil, nil, &memStore{})

		_, err := svc.UpdateEvent(context.Background(), 5, UpdateEventInput{}, 7)
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestUpdateEvent_CapacityAgainstCurrentInstallations(t *testing.T) {
	current := domain.Event{
		ID:               5,
		OrganizerID:      7,
		State:            domain.StateRegistered,
		Date:             time.Now().AddDate(0, 0, 10),
		StartTime:        "09:00",
		EndTime:          "11:00",
		DeclaredCapacity: 40,
		Installations:    []domain.Installation{{ID: 1, Capacity: 50}},
	}
	repo := &fakeEventRepo{
		getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) { return current, nil },
	}
	svc, _ := newEventService(repo, map[uint]int{1: 50}, nil, &memStore{})

	tooBig := 60
	_, err := svc.UpdateEvent(context.Background(), 5, UpdateEventInput{DeclaredCapacity: &tooBig}, 7)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "capacidad", ve.Field)
}

func TestUpdateEvent_RemovesObsoleteBlobsAfterCommit(t *testing.T) {
	current := domain.Event{
		ID:            5,
		OrganizerID:   7,
		State:         domain.StateRegistered,
		Date:          time.Now().AddDate(0, 0, 10),
		StartTime:     "09:00",
		EndTime:       "11:00",
		Installations: []domain.Installation{{ID: 1, Capacity: 50}},
		PrincipalAval: &domain.Aval{UserID: 7, EventID: 5, FilePath: "/uploads/avales/old", Principal: true, Type: domain.AvalProgramDirector},
	}
	repo := &fakeEventRepo{
		getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) { return current, nil },
		updateFn: func(ctx context.Context, id, organizerID uint, update domain.EventUpdate, orgLinks []domain.OrganizationEvent, aval *domain.Aval, removeAval bool) ([]string, error) {
			require.NotNil(t, aval)
			assert.Equal(t, domain.AvalProgramDirector, aval.Type)
			return []string{"/uploads/avales/old"}, nil
		},
	}
	store := &memStore{}
	svc, _ := newEventService(repo, map[uint]int{1: 50}, nil, store)

	input := UpdateEventInput{
		AvalFile: &Upload{Filename: "nuevo.pdf", Content: strings.NewReader("pdf")},
	}

	_, err := svc.UpdateEvent(context.Background(), 5, input, 7)
	require.NoError(t, err)

	assert.Contains(t, store.removed, "/uploads/avales/old")
}

func TestUpdateEvent_FailedTransactionCleansNewBlobs(t *testing.T) {
	current := domain.Event{
		ID:            5,
		OrganizerID:   7,
		State:         domain.StateRegistered,
		Date:          time.Now().AddDate(0, 0, 10),
		StartTime:     "09:00",
		EndTime:       "11:00",
		Installations: []domain.Installation{{ID: 1, Capacity: 50}},
	}
	repo := &fakeEventRepo{
		getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) { return current, nil },
		updateFn: func(ctx context.Context, id, organizerID uint, update domain.EventUpdate, orgLinks []domain.OrganizationEvent, aval *domain.Aval, removeAval bool) ([]string, error) {
			return nil, errors.New("tx failed")
		},
	}
	store := &memStore{}
	svc, _ := newEventService(repo, map[uint]int{1: 50}, nil, store)

	avalType := "directorDocencia"
	input := UpdateEventInput{
		AvalType: &avalType,
		AvalFile: &Upload{Filename: "nuevo.pdf", Content: strings.NewReader("pdf")},
	}

	_, err := svc.UpdateEvent(context.Background(), 5, input, 7)
	require.Error(t, err)

	assert.Equal(t, store.saved, store.removed)
}

func TestSubmitForReview(t *testing.T) {
	t.Run("moves to enRevision and notifies", func(t *testing.T) {
		state := domain.StateRegistered
		repo := &fakeEventRepo{
			getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) {
				return domain.Event{ID: 5, OrganizerID: 7, State: state}, nil
			},
			updateStateFn: func(ctx context.Context, id uint, from, to domain.EventState) (domain.Event, error) {
				assert.Equal(t, domain.StateRegistered, from)
				assert.Equal(t, domain.StateUnderReview, to)
				state = to
				return domain.Event{ID: 5, OrganizerID: 7, State: to}, nil
			},
		}
		svc, notifier := newEventService(repo, nil, nil, &memStore{})

		event, err := svc.SubmitForReview(context.Background(), 5, 7)
		require.NoError(t, err)

		assert.Equal(t, domain.StateUnderReview, event.State)
		require.Len(t, notifier.submitted, 1)
		assert.Equal(t, uint(5), notifier.submitted[0].ID)
	})

	t.Run("rejects transition from enRevision", func(t *testing.T) {
		repo := &fakeEventRepo{
			getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) {
				return domain.Event{ID: 5, OrganizerID: 7, State: domain.StateUnderReview}, nil
			},
			updateStateFn: func(ctx context.Context, id uint, from, to domain.EventState) (domain.Event, error) {
				return domain.Event{}, repository.ErrIllegalTransition
			},
		}
		svc, notifier := newEventService(repo, nil, nil, &memStore{})

		_, err := svc.SubmitForReview(context.Background(), 5, 7)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Empty(t, notifier.submitted)
	})

	t.Run("only the owner can submit", func(t *testing.T) {
		repo := &fakeEventRepo{
			getDetailedFn: func(ctx context.Context, id uint) (domain.Event, error) {
				return domain.Event{ID: 5, OrganizerID: 7, State: domain.StateRegistered}, nil
			},
		}
		svc, _ := newEventService(repo, nil, nil, &memStore{})

		_, err := svc.SubmitForReview(context.Background(), 5, 99)
		assert.ErrorIs(t, err, ErrNotEventOwner)
	})
}

func TestDeleteEvent(t *testing.T) {
	repo := &fakeEventRepo{
		deleteFn: func(ctx context.Context, id uint) (bool, []string, error) {
			return true, []string{"/uploads/avales/a", "/uploads/certificados/b"}, nil
		},
	}
	store := &memStore{}
	svc, _ := newEventService(repo, nil, nil, store)

	found, err := svc.DeleteEvent(context.Background(), 5)
	require.NoError(t, err)

	assert.True(t, found)
	assert.ElementsMatch(t, []string{"/uploads/avales/a", "/uploads/certificados/b"}, store.removed)
}

func TestListEvents_RoleScoping(t *testing.T) {
	repo := &fakeEventRepo{
		listFn: func(ctx context.Context) ([]domain.Event, error) {
			return []domain.Event{{ID: 1}, {ID: 2}}, nil
		},
		listByOrganizerFn: func(ctx context.Context, organizerID uint) ([]domain.Event, error) {
			assert.Equal(t, uint(7), organizerID)
			return []domain.Event{{ID: 1}}, nil
		},
	}
	svc, _ := newEventService(repo, nil, nil, &memStore{})

	all, err := svc.ListEvents(context.Background(), domain.User{ID: 3, Role: domain.RoleSecretariat})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListEvents(context.Background(), domain.User{ID: 7, Role: domain.RoleOrganizer})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
