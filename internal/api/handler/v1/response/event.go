package response

import "github.com/bienestar-u/eventos-api/internal/domain"

type DeleteEventResponse struct {
	Success bool `json:"success"`
}

type DeleteNotificationResponse struct {
	Success bool `json:"success"`
}

// EvaluateEventResponse pairs the recorded decision with the event in its
// post-decision state.
type EvaluateEventResponse struct {
	Evaluation domain.Evaluation `json:"evaluacion"`
	Event      domain.Event      `json:"evento"`
}
