package registration

import (
	"time"

	"github.com/google/uuid"
)

// Registration is a quiz participant's contact record.
// IsCorrect stays nil until the participant submits a guess.
type Registration struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Organization string    `json:"organization,omitempty"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	IsCorrect    *bool     `json:"isCorrect"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the raw form data a registration is built from.
type Input struct {
	FullName     string `json:"fullName"`
	Organization string `json:"organization"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// FieldError describes a single rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New builds an unsaved registration from normalized input
func New(in Input) *Registration {
	in = Normalize(in)
	return &Registration{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Organization: in.Organization,
		Phone:        in.Phone,
		Email:        in.Email,
	}
}
