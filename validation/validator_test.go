package validation

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/forohub/errors"
)

type signup struct {
	Name     string `json:"nombre" validate:"required,max=10"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"contrasena" validate:"required,min=8"`
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(signup{Name: "Ana", Email: "a@x.com", Password: "secret123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	err := Validate(signup{Name: "a name that is too long", Email: "nope", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", appErr.HTTPStatus)
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected []FieldError details, got %T", appErr.Details["fields"])
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"nombre":     "must be at most 10 characters",
		"email":      "must be a valid email address",
		"contrasena": "must be at least 8 characters",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s: expected %q, got %q", field, msg, got[field])
		}
	}
	if !strings.Contains(appErr.Message, "email: must be a valid email address") {
		t.Errorf("message should list field errors, got %q", appErr.Message)
	}
}

func TestValidate_Required(t *testing.T) {
	err := Validate(signup{})
	appErr, _ := errors.AsAppError(err)
	if appErr == nil || !strings.Contains(appErr.Message, "nombre: is required") {
		t.Fatalf("expected required error for nombre, got %v", err)
	}
}
