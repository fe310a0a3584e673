package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateOrganizationRequest struct {
	Name                string `json:"nombre"`
	LegalRepresentative string `json:"representante_legal"`
	Sector              string `json:"sector"`
	Phone               string `json:"telefono"`
	Email               string `json:"correo"`
}

func (req *CreateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Sector, validation.Length(0, 100)),
	)
}

type UpdateOrganizationRequest struct {
	Name                string `json:"nombre"`
	LegalRepresentative string `json:"representante_legal"`
	Sector              string `json:"sector"`
	Phone               string `json:"telefono"`
	Email               string `json:"correo"`
}

func (req *UpdateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, is.Email),
	)
}
