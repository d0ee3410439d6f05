package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestMustRegister(t *testing.T) {
	tests := []struct {
		name      string
		tag       string
		wantPanic bool
	}{
		{"valid tag", "nursery_slug", false},
		{"empty tag", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Fatalf("panic = %v, want panic %v", r, tt.wantPanic)
				}
			}()
			mustRegister(validator.New(), tt.tag, isSlug)
		})
	}
}

func TestSlugTagRegistered(t *testing.T) {
	type req struct {
		ID string `validate:"slug"`
	}
	if err := validate.Struct(req{ID: "north-01"}); err != nil {
		t.Fatalf("valid slug rejected: %v", err)
	}
	if err := validate.Struct(req{ID: "North 01"}); err == nil {
		t.Fatal("malformed slug accepted")
	}
}
