// Package dto provides data transfer objects for job HTTP request and response handling.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/jobcrypt/internal/validation"
)

// DispatchJobRequest contains the parameters for dispatching a new job run.
type DispatchJobRequest struct {
	Name string          `json:"name"`
	Init json.RawMessage `json:"init"`
}

// Validate checks if the dispatch request is valid.
func (r *DispatchJobRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Init,
			validation.Required,
		),
	)
}
