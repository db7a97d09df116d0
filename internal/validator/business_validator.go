package validator

import (
	"bytes"
	"encoding/json"
)

// ValidateMonitoringSubmit checks the parts of a monitoring submission that
// struct tags cannot express.
func (v *Validator) ValidateMonitoringSubmit(req *MonitoringSubmitRequest) ValidationErrors {
	errors := v.Validate(req)

	if len(req.Responses) > 0 {
		trimmed := bytes.TrimSpace(req.Responses)
		if !json.Valid(trimmed) || bytes.Equal(trimmed, []byte("null")) {
			errors = append(errors, ValidationError{
				Field:   "responses",
				Message: "must be a non-null JSON document",
				Rule:    "json",
			})
		}
	}

	return errors
}

// ValidateExpertUpdate rejects updates that change nothing
func (v *Validator) ValidateExpertUpdate(req *ExpertUpdateRequest) ValidationErrors {
	errors := v.Validate(req)

	if req.Name == nil && req.Specialty == nil && req.Email == nil && req.PhoneNumber == nil && req.Bio == nil {
		errors = append(errors, ValidationError{
			Field:   "request",
			Message: "at least one field must be provided",
			Rule:    "business_logic",
		})
	}

	return errors
}
