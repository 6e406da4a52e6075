package validation_test

import (
	"errors"
	"strings"
	"testing"

	"vocamail/internal/validation"
)

var errInvalid = errors.New("invalid input")

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Link  string `json:"link,omitempty" validate:"omitempty,url"`
	Level *int   `json:"level" validate:"omitnil,gte=1,lte=3"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := validation.New()
	level := 7
	err := v.Validate(sample{Email: "bad", Link: "not a url", Level: &level}, errInvalid)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected wrapped kind, got %v", err)
	}
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	if verr.Fields["email"] != "must be a valid email address" {
		t.Fatalf("unexpected email message %q", verr.Fields["email"])
	}
	if verr.Fields["link"] != "must be a valid URL" {
		t.Fatalf("unexpected link message %q", verr.Fields["link"])
	}
	if !strings.Contains(verr.Fields["level"], "less than or equal to 3") {
		t.Fatalf("unexpected level message %q", verr.Fields["level"])
	}
	if !strings.HasPrefix(err.Error(), "invalid input: email ") {
		t.Fatalf("fields should be sorted in message, got %q", err.Error())
	}
}

func TestValidateAcceptsNilPointerAndEmptyOptional(t *testing.T) {
	if err := validation.New().Validate(sample{Email: "ok@example.com"}, errInvalid); err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}
}
