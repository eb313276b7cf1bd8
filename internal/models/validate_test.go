package models

import (
	"errors"
	"testing"
	"time"

	"github.com/Spok95/school-discipline/internal/apperr"
)

func TestValidate_NewRecord(t *testing.T) {
	ok := NewRecord{
		RuleCode:  "VP083",
		StudentID: "0190b3c4-6a2e-7c1d-9f00-aa11bb22cc33",
		Quantity:  2,
		EventDate: time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC),
	}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := ok
	bad.Quantity = 0
	bad.StudentID = "nope"
	err := Validate(bad)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T %v", err, err)
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatal("validation error must unwrap to ErrValidation")
	}
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	if !fields["quantity"] || !fields["studentId"] {
		t.Fatalf("fields = %+v", verr.Fields)
	}
}

func TestValidate_RoleTag(t *testing.T) {
	in := SetClaimsInput{UID: "0190b3c4-6a2e-7c1d-9f00-aa11bb22cc33", Role: "janitor"}
	err := Validate(in)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "role" {
		t.Fatalf("expected role error, got %v", err)
	}

	in.Role = RoleProctor
	if err := Validate(in); err != nil {
		t.Fatalf("proctor should be valid: %v", err)
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("homeroom_teacher"); !ok || r != RoleHomeroomTeacher {
		t.Fatalf("got %q %v", r, ok)
	}
	if r, ok := ParseRole(""); ok || r != RoleNone {
		t.Fatalf("empty role must not parse, got %q", r)
	}
}
