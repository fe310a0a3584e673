package dao

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		fmt.Printf("docker is not available, skipping dao tests: %v\n", err)
		os.Exit(0)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=eventos_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		fmt.Printf("could not start postgres container, skipping dao tests: %v\n", err)
		os.Exit(0)
	}
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("postgres://test:secret@%v/eventos_test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 2 * time.Minute
	if err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}

		testDB = db

		return nil
	}); err != nil {
		fmt.Printf("could not connect to postgres, skipping dao tests: %v\n", err)
		_ = pool.Purge(resource)
		os.Exit(0)
	}

	if err = InitTables(testDB); err != nil {
		fmt.Printf("could not migrate tables: %v\n", err)
		_ = pool.Purge(resource)
		os.Exit(1)
	}

	code := m.Run()

	_ = pool.Purge(resource)
	os.Exit(code)
}

func seedUser(t *testing.T, email, role string) User {
	t.Helper()

	user, err := NewUserDAO(testDB).Insert(context.Background(), User{
		Email:    email,
		Password: "hashed",
		Role:     role,
		Name:     "Test User",
	})
	require.NoError(t, err)

	return user
}

func seedInstallation(t *testing.T, name string, capacity int) Installation {
	t.Helper()

	installation := Installation{Name: name, Capacity: capacity}
	require.NoError(t, testDB.Create(&installation).Error)

	return installation
}

func seedEvent(t *testing.T, organizerID uint, name, state string, installationIDs []uint) Event {
	t.Helper()

	event, err := NewEventDAO(testDB).Insert(context.Background(), Event{
		OrganizerID:      organizerID,
		Name:             name,
		Category:         "academico",
		Date:             time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:        "09:00",
		EndTime:          "12:00",
		DeclaredCapacity: 30,
		State:            "registrado",
	}, installationIDs, nil, nil)
	require.NoError(t, err)

	if state != "registrado" {
		require.NoError(t, testDB.Model(&Event{}).Where("id = ?", event.ID).Update("state", state).Error)
		event.State = state
	}

	return event
}

func TestEventDAO_InsertWithAssociations(t *testing.T) {
	ctx := context.Background()
	organizer := seedUser(t, "organizer-insert@uni.edu", "organizador")
	installation := seedInstallation(t, "Auditorio Principal", 200)

	organization := Organization{Name: "Cruz Roja", LegalRepresentative: "Maria Perez", OwnerID: organizer.ID}
	require.NoError(t, testDB.Create(&organization).Error)

	d := NewEventDAO(testDB)
	date := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	created, err := d.Insert(ctx, Event{
		OrganizerID:      organizer.ID,
		Name:             "Feria de Libros",
		Category:         "academico",
		Date:             date,
		StartTime:        "10:00",
		EndTime:          "16:00",
		DeclaredCapacity: 150,
		State:            "registrado",
	}, []uint{installation.ID}, []OrganizationEvent{
		{OrganizationID: organization.ID, Participant: "Maria Perez", IsLegalRepresentative: "si", CertificatePath: "/uploads/certificados/c1"},
	}, &Aval{
		UserID:    organizer.ID,
		FilePath:  "/uploads/avales/a1",
		Principal: true,
		Type:      "directorPrograma",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	detailed, err := d.FindDetailed(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, organizer.ID, detailed.Organizer.ID)
	require.Len(t, detailed.Installations, 1)
	assert.Equal(t, installation.ID, detailed.Installations[0].ID)
	require.Len(t, detailed.Avales, 1)
	assert.True(t, detailed.Avales[0].Principal)
	require.Len(t, detailed.OrganizationLinks, 1)
	assert.Equal(t, "si", detailed.OrganizationLinks[0].IsLegalRepresentative)

	found, err := d.FindByNaturalKey(ctx, "Feria de Libros", date, "10:00", installation.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = d.FindByNaturalKey(ctx, "Feria de Libros", date, "11:00", installation.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventDAO_UpdateState(t *testing.T) {
	ctx := context.Background()
	organizer := seedUser(t, "organizer-state@uni.edu", "organizador")
	installation := seedInstallation(t, "Sala 101", 40)
	event := seedEvent(t, organizer.ID, "Torneo de Ajedrez", "registrado", []uint{installation.ID})

	d := NewEventDAO(testDB)

	_, err := d.UpdateState(ctx, event.ID, "registrado", "enRevision")
	require.NoError(t, err)

	_, err = d.UpdateState(ctx, event.ID, "registrado", "enRevision")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = d.UpdateState(ctx, 999999, "registrado", "enRevision")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventDAO_UpdateWithAssociations(t *testing.T) {
	ctx := context.Background()
	organizer := seedUser(t, "organizer-update@uni.edu", "organizador")
	installation := seedInstallation(t, "Sala 102", 40)
	event := seedEvent(t, organizer.ID, "Concierto", "registrado", []uint{installation.ID})

	d := NewEventDAO(testDB)

	t.Run("only the owner can update", func(t *testing.T) {
		_, err := d.UpdateWithAssociations(ctx, event.ID, organizer.ID+1000, map[string]interface{}{"name": "x"}, nil, nil, nil, false)
		assert.ErrorIs(t, err, ErrNotEventOwner)
	})

	t.Run("aval replacement reports the displaced blob", func(t *testing.T) {
		aval := &Aval{UserID: organizer.ID, FilePath: "/uploads/avales/v1", Principal: true, Type: "directorPrograma"}
		obsolete, err := d.UpdateWithAssociations(ctx, event.ID, organizer.ID, nil, nil, nil, aval, false)
		require.NoError(t, err)
		assert.Empty(t, obsolete)

		replacement := &Aval{UserID: organizer.ID, FilePath: "/uploads/avales/v2", Principal: true, Type: "directorDocencia"}
		obsolete, err = d.UpdateWithAssociations(ctx, event.ID, organizer.ID, nil, nil, nil, replacement, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"/uploads/avales/v1"}, obsolete)
	})

	t.Run("remove aval reports its blob", func(t *testing.T) {
		obsolete, err := d.UpdateWithAssociations(ctx, event.ID, organizer.ID, nil, nil, nil, nil, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"/uploads/avales/v2"}, obsolete)

		detailed, err := d.FindDetailed(ctx, event.ID)
		require.NoError(t, err)
		assert.Empty(t, detailed.Avales)
	})

	t.Run("approved events are immutable", func(t *testing.T) {
		require.NoError(t, testDB.Model(&Event{}).Where("id = ?", event.ID).Update("state", "aprobado").Error)

		_, err := d.UpdateWithAssociations(ctx, event.ID, organizer.ID, map[string]interface{}{"name": "y"}, nil, nil, nil, false)
		assert.ErrorIs(t, err, ErrEventImmutable)
	})
}

func TestEvaluationDAO_InsertWithStateChange(t *testing.T) {
	ctx := context.Background()
	organizer := seedUser(t, "organizer-eval@uni.edu", "organizador")
	secretary := seedUser(t, "secretary-eval@uni.edu", "secretaria")
	installation := seedInstallation(t, "Sala 103", 40)
	event := seedEvent(t, organizer.ID, "Foro Ambiental", "enRevision", []uint{installation.ID})

	d := NewEvaluationDAO(testDB)

	evaluation := Evaluation{
		EventID:     event.ID,
		SecretaryID: secretary.ID,
		Outcome:     "aprobado",
		Date:        time.Now(),
		ActaPath:    "/uploads/actas/acta1",
	}

	created, updated, err := d.InsertWithStateChange(ctx, evaluation, "aprobado")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, event.ID, updated.ID)

	var stored Event
	require.NoError(t, testDB.First(&stored, event.ID).Error)
	assert.Equal(t, "aprobado", stored.State)

	// The event is no longer under review; a second evaluation must fail.
	_, _, err = d.InsertWithStateChange(ctx, evaluation, "aprobado")
	assert.ErrorIs(t, err, ErrEventNotInReview)

	evaluations, err := d.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, evaluations, 1)
}

func TestEventDAO_Delete(t *testing.T) {
	ctx := context.Background()
	organizer := seedUser(t, "organizer-delete@uni.edu", "organizador")
	installation := seedInstallation(t, "Sala 104", 40)
	event := seedEvent(t, organizer.ID, "Cine Foro", "registrado", []uint{installation.ID})

	require.NoError(t, testDB.Create(&Aval{
		UserID: organizer.ID, EventID: event.ID, FilePath: "/uploads/avales/del1", Principal: true, Type: "directorPrograma",
	}).Error)

	d := NewEventDAO(testDB)

	found, obsolete, err := d.Delete(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"/uploads/avales/del1"}, obsolete)

	_, err = d.FindDetailed(ctx, event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	// Deleting again is a no-op, not an error.
	found, obsolete, err = d.Delete(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, obsolete)
}

func TestNotificationDAO(t *testing.T) {
	ctx := context.Background()
	recipient := seedUser(t, "recipient-notif@uni.edu", "secretaria")
	other := seedUser(t, "other-notif@uni.edu", "secretaria")

	d := NewNotificationDAO(testDB)

	created, err := d.Insert(ctx, Notification{
		RecipientID: recipient.ID,
		EventID:     1,
		Type:        "enRevision",
		Title:       "Evento enviado a revision",
	})
	require.NoError(t, err)

	t.Run("mark read is recipient scoped", func(t *testing.T) {
		_, err := d.MarkRead(ctx, created.ID, other.ID)
		assert.ErrorIs(t, err, ErrNotificationNotFound)

		_, err = d.MarkRead(ctx, created.ID, recipient.ID)
		require.NoError(t, err)

		var stored Notification
		require.NoError(t, testDB.First(&stored, created.ID).Error)
		assert.True(t, stored.Read)
		assert.NotNil(t, stored.ReadAt)
	})

	t.Run("retention sweep purges old read notifications", func(t *testing.T) {
		purged, err := d.DeleteReadBefore(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.EqualValues(t, 1, purged)
	})
}

func TestUserDAO_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	d := NewUserDAO(testDB)

	_, err := d.Insert(ctx, User{Email: "dup@uni.edu", Password: "x", Role: "organizador", Name: "A"})
	require.NoError(t, err)

	_, err = d.Insert(ctx, User{Email: "dup@uni.edu", Password: "x", Role: "organizador", Name: "B"})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}
