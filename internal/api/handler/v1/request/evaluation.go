package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// EvaluateEventRequest carries the plain form values of the multipart
// evaluation form; the "actaAprobacion" file part travels separately.
type EvaluateEventRequest struct {
	EventID       uint   `form:"idEvento"`
	Outcome       string `form:"estado"`
	Justification string `form:"justificacion"`
}

func (req *EvaluateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Outcome, validation.Required, validation.In("aprobado", "rechazado")),
		validation.Field(&req.Justification, validation.Length(0, 500)),
	)
}
