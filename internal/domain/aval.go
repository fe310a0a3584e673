package domain

type AvalType string

const (
	AvalProgramDirector  AvalType = "directorPrograma"
	AvalTeachingDirector AvalType = "directorDocencia"
)

// Aval is an endorsement document backing an event submission. At most one
// row exists per (UserID, EventID); the principal one is the authoritative
// endorsement for the event.
type Aval struct {
	UserID    uint     `json:"usuario_id"`
	EventID   uint     `json:"evento_id"`
	FilePath  string   `json:"archivo,omitempty"`
	Principal bool     `json:"principal"`
	Type      AvalType `json:"tipo_aval"`
}
