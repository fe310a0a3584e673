package domain

import "time"

type EvaluationOutcome string

const (
	OutcomeApproved EvaluationOutcome = "aprobado"
	OutcomeRejected EvaluationOutcome = "rechazado"
)

// Evaluation is the secretariat's decision record for one review cycle.
// Events accumulate a history of evaluations across resubmissions.
type Evaluation struct {
	ID            uint              `json:"id"`
	EventID       uint              `json:"evento_id"`
	SecretaryID   uint              `json:"secretaria_id"`
	Outcome       EvaluationOutcome `json:"estado"`
	Date          time.Time         `json:"fecha_evaluacion"`
	Justification string            `json:"justificacion"`
	ActaPath      string            `json:"acta_aprobacion"`
}
