package render

import (
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/store"
	"github.com/goliatone/go-offerform/pkg/validation"
)

// Outcome is what the rendering layer shows after a submit attempt.
type Outcome struct {
	OK         bool                  `json:"ok"`
	Message    string                `json:"message"`
	Operation  store.Outcome         `json:"operation,omitempty"`
	Record     *model.FormSubmission `json:"record,omitempty"`
	Issues     []validation.Issue    `json:"issues,omitempty"`
	Errors     map[string][]string   `json:"errors,omitempty"`
	FormErrors []string              `json:"formErrors,omitempty"`
}

// Success builds the outcome of a persisted record.
func Success(op store.Outcome, record model.FormSubmission) Outcome {
	message := "Form submitted successfully!"
	if op == store.OutcomeUpdated {
		message = "Form updated successfully!"
	}
	return Outcome{OK: true, Message: message, Operation: op, Record: &record}
}

// Failure builds a not-OK outcome carrying a single message.
func Failure(message string) Outcome {
	return Outcome{Message: message}
}
