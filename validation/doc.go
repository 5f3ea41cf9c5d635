// Package validation validates request payloads with struct tags.
//
//	type LoginRequest struct {
//	    Email    string `json:"email" validate:"required,email"`
//	    Password string `json:"contrasena" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// Failures come back as a 400 *errors.AppError whose details list each
// offending field by its JSON name.
package validation
