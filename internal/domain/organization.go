package domain

import "time"

type Organization struct {
	ID                  uint      `json:"id"`
	Name                string    `json:"nombre"`
	LegalRepresentative string    `json:"representante_legal"`
	Sector              string    `json:"sector"`
	Phone               string    `json:"telefono"`
	Email               string    `json:"correo"`
	OwnerID             uint      `json:"owner_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// OrganizationEvent links an organization to an event it participates in.
// Keyed by (EventID, OrganizationID); upserts merge rather than overwrite:
// an empty CertificatePath on input preserves the stored one.
type OrganizationEvent struct {
	EventID               uint   `json:"evento_id"`
	OrganizationID        uint   `json:"organizacion_id"`
	Participant           string `json:"participante"`
	IsLegalRepresentative string `json:"es_representante_legal"` // "si" or "no"
	CertificatePath       string `json:"certificado_participacion,omitempty"`
}
