package validator_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgvalidator "github.com/ghuser/nurseryinventory/pkg/validator"
)

type sampleStruct struct {
	ID      string  `validate:"required,slug"`
	Name    string  `validate:"required,min=1,max=10"`
	State   string  `validate:"omitempty,oneof=active inactive other"`
	Lat     float64 `validate:"latitude"`
	Count   int     `validate:"gt=0"`
	Contact string  `validate:"omitempty,email"`
}

func validSample() sampleStruct {
	return sampleStruct{ID: "north-01", Name: "north", Lat: -33.4, Count: 1}
}

func TestValidate_valid(t *testing.T) {
	s := validSample()
	if err := pkgvalidator.Validate(&s); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidate_missingRequired(t *testing.T) {
	s := sampleStruct{}
	if err := pkgvalidator.Validate(&s); err == nil {
		t.Fatal("expected validation error for empty struct")
	}
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*sampleStruct)
		field  string
		want   string
	}{
		{"required", func(s *sampleStruct) { s.ID = "" }, "ID", "This field is required"},
		{"slug", func(s *sampleStruct) { s.ID = "North 01" }, "ID", "Must be lowercase letters, digits and single dashes"},
		{"max", func(s *sampleStruct) { s.Name = "12345678901" }, "Name", "Maximum length is 10"},
		{"oneof", func(s *sampleStruct) { s.State = "sleeping" }, "State", "Must be one of: active inactive other"},
		{"latitude", func(s *sampleStruct) { s.Lat = 91 }, "Lat", "Must be a latitude between -90 and 90"},
		{"gt", func(s *sampleStruct) { s.Count = 0 }, "Count", "Must be greater than 0"},
		{"email", func(s *sampleStruct) { s.Contact = "nope" }, "Contact", "Must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&s))
			if m[tt.field] != tt.want {
				t.Errorf("%s message: got %q, want %q", tt.field, m[tt.field], tt.want)
			}
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie)
	if len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

// --- ValidateRequest ---

type nurseryReq struct {
	ID   string `json:"id"   validate:"required,slug"`
	Name string `json:"name" validate:"required,min=1,max=255"`
}

func TestValidateRequest_valid(t *testing.T) {
	body := `{"id":"north","name":"North Nursery"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	req, ok := pkgvalidator.ValidateRequest[nurseryReq](w, r)
	if !ok {
		t.Fatalf("expected ok=true, got false. Response: %s", w.Body.String())
	}
	if req.Name != "North Nursery" {
		t.Errorf("unexpected Name: %q", req.Name)
	}
}

func TestValidateRequest_invalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad json"))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[nurseryReq](w, r)
	if ok {
		t.Fatal("expected ok=false for malformed JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid JSON") {
		t.Errorf("expected 'Invalid JSON' in body, got: %s", w.Body.String())
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	body := `{"id":"north","name":"` + strings.Repeat("n", 64) + `"}`
	reject := func([]string) error { return nil }
	tests := []struct {
		name string
		run  func(http.ResponseWriter, *http.Request) bool
	}{
		{"create", func(w http.ResponseWriter, r *http.Request) bool {
			_, ok := pkgvalidator.ValidateRequest[nurseryReq](w, r)
			return ok
		}},
		{"patch", func(w http.ResponseWriter, r *http.Request) bool {
			_, ok := pkgvalidator.ValidatePatchRequest[nurseryReq](w, r, reject)
			return ok
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			r.Body = http.MaxBytesReader(w, r.Body, 16)

			if tt.run(w, r) {
				t.Fatal("expected ok=false for oversized body")
			}
			if w.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("expected 413, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), "16 bytes") {
				t.Errorf("expected limit in body, got: %s", w.Body.String())
			}
		})
	}
}

func TestValidateRequest_missingField(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"North"}`))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[nurseryReq](w, r)
	if ok {
		t.Fatal("expected ok=false for missing id")
	}
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Validation failed") {
		t.Errorf("expected 'Validation failed' in body, got: %s", w.Body.String())
	}
}

// --- ValidatePatchRequest ---

type renameReq struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=20"`
}

func rejectID(keys []string) error {
	for _, k := range keys {
		if k == "id" {
			return errors.New("fields cannot be updated: id")
		}
	}
	return nil
}

func TestValidatePatchRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode int
		wantBody string
	}{
		{"valid", `{"name":"South"}`, true, http.StatusOK, ""},
		{"protected key", `{"id":"x","name":"South"}`, false, http.StatusUnprocessableEntity, "fields cannot be updated: id"},
		{"protected key with null", `{"id":null}`, false, http.StatusUnprocessableEntity, "fields cannot be updated"},
		{"not an object", `["name"]`, false, http.StatusBadRequest, "Invalid JSON"},
		{"wrong type", `{"name":3}`, false, http.StatusBadRequest, "Invalid JSON"},
		{"too long", `{"name":"` + strings.Repeat("a", 21) + `"}`, false, http.StatusUnprocessableEntity, "Validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			req, ok := pkgvalidator.ValidatePatchRequest[renameReq](w, r, rejectID)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (body %s)", ok, tt.wantOK, w.Body.String())
			}
			if ok {
				if req.Name == nil || *req.Name != "South" {
					t.Errorf("unexpected Name: %v", req.Name)
				}
				return
			}
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
