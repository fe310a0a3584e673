package domain

import "time"

type EventCategory string

const (
	CategoryAcademic     EventCategory = "academico"
	CategoryRecreational EventCategory = "recreativo"
)

type EventState string

const (
	// StateRegistered is the initial state. A rejected evaluation folds the
	// event back here so the organizer can amend and resubmit.
	StateRegistered  EventState = "registrado"
	StateUnderReview EventState = "enRevision"
	StateApproved    EventState = "aprobado"
)

type Event struct {
	ID               uint          `json:"id"`
	OrganizerID      uint          `json:"organizador_id"`
	Name             string        `json:"nombre"`
	Category         EventCategory `json:"categoria"`
	Date             time.Time     `json:"fecha"`
	StartTime        string        `json:"hora_inicio"` // "HH:MM"
	EndTime          string        `json:"hora_fin"`    // "HH:MM"
	Location         string        `json:"lugar"`
	DeclaredCapacity int           `json:"capacidad"`
	Description      string        `json:"descripcion"`
	State            EventState    `json:"estado"`

	Organizer         User                `json:"organizador"`
	Installations     []Installation      `json:"instalaciones"`
	PrincipalAval     *Aval               `json:"aval,omitempty"`
	OrganizationLinks []OrganizationEvent `json:"organizaciones,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// EventUpdate is a partial update: nil fields are left untouched. It replaces
// the "write whichever columns happen to exist" approach with a statically
// typed record, so a silently dropped field is a compile error, not a bug.
type EventUpdate struct {
	Name             *string
	Category         *EventCategory
	Date             *time.Time
	StartTime        *string
	EndTime          *string
	Location         *string
	DeclaredCapacity *int
	Description      *string

	// InstallationIDs, when non-nil, replaces the linked installations
	// wholesale (delete-all-then-reinsert, no diffing).
	InstallationIDs []uint
}
