package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var timeExp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// CreateEventRequest is the "evento" JSON part of the multipart create form.
type CreateEventRequest struct {
	Name             string `json:"nombre"`
	Category         string `json:"categoria"`
	Date             string `json:"fecha"` // "YYYY-MM-DD"
	StartTime        string `json:"hora_inicio"`
	EndTime          string `json:"hora_fin"`
	Location         string `json:"lugar"`
	DeclaredCapacity int    `json:"capacidad"`
	Description      string `json:"descripcion"`
	InstallationIDs  []uint `json:"instalaciones"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Category, validation.Required, validation.In("academico", "recreativo")),
		validation.Field(&req.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&req.StartTime, validation.Required, validation.Match(timeExp)),
		validation.Field(&req.EndTime, validation.Required, validation.Match(timeExp)),
		validation.Field(&req.DeclaredCapacity, validation.Required, validation.Min(1)),
		validation.Field(&req.InstallationIDs, validation.Required, validation.Length(1, 0)),
		validation.Field(&req.Description, validation.Length(0, 500)),
	)
}

// UpdateEventRequest is the "evento" JSON part of the multipart update form.
// Absent fields stay untouched; InstallationIDs, when present, replaces the
// installation set wholesale.
type UpdateEventRequest struct {
	Name             *string `json:"nombre"`
	Category         *string `json:"categoria"`
	Date             *string `json:"fecha"`
	StartTime        *string `json:"hora_inicio"`
	EndTime          *string `json:"hora_fin"`
	Location         *string `json:"lugar"`
	DeclaredCapacity *int    `json:"capacidad"`
	Description      *string `json:"descripcion"`
	InstallationIDs  []uint  `json:"instalaciones"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(2, 100)),
		validation.Field(&req.Category, validation.In("academico", "recreativo")),
		validation.Field(&req.Date, validation.Date("2006-01-02")),
		validation.Field(&req.StartTime, validation.Match(timeExp)),
		validation.Field(&req.EndTime, validation.Match(timeExp)),
		validation.Field(&req.DeclaredCapacity, validation.Min(1)),
	)
}

// OrganizationLink is one element of the "organizaciones" JSON part. The
// participation certificate travels as a separate file part named
// "certificado_<organizacion_id>".
type OrganizationLink struct {
	OrganizationID        uint   `json:"organizacion_id"`
	Participant           string `json:"participante"`
	IsLegalRepresentative bool   `json:"es_representante_legal"`
}

func (req *OrganizationLink) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.OrganizationID, validation.Required, validation.Min(uint(1))),
	)
}
