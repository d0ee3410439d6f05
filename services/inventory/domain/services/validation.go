package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

const (
	maxNameLength    = 200
	maxTextLength    = 2000
	maxSpeciesLength = 200
)

// ProtectedFields are record keys a partial update may never carry. Parent
// ids, identity and creation stamps are fixed at create; statistics belong to
// the aggregation engine.
var ProtectedFields = []string{"id", "nurseryId", "bedId", "createdAt", "createdBy", "statistics"}

// RejectProtectedFields returns an error naming every protected key present
// in keys.
func RejectProtectedFields(keys []string) error {
	var found []string
	for _, k := range keys {
		for _, p := range ProtectedFields {
			if k == p {
				found = append(found, k)
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	sort.Strings(found)
	return fmt.Errorf("fields cannot be updated: %s", strings.Join(found, ", "))
}

// ValidateName enforces the rules shared by nursery names: non-blank, no
// surrounding whitespace, no control characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxNameLength)
	}
	if hasControl(name) {
		return fmt.Errorf("name must not contain control characters")
	}
	return nil
}

func validateText(field, s string) error {
	if len(s) > maxTextLength {
		return fmt.Errorf("%s must not exceed %d characters", field, maxTextLength)
	}
	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// ValidateNurseryInput checks a nursery before it is created.
func ValidateNurseryInput(in models.NewNurseryInput) error {
	if _, err := models.NewSlug(in.ID); err != nil {
		return err
	}
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	if err := validateText("description", in.Description); err != nil {
		return err
	}
	if err := in.Location.Validate(); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}
	return nil
}

// ValidateNurseryPatch checks the fields a nursery update sets.
func ValidateNurseryPatch(p models.NurseryPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("update sets no fields")
	}
	if p.Name != nil {
		if err := ValidateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateText("description", *p.Description); err != nil {
			return err
		}
	}
	if p.Location != nil {
		if err := p.Location.Validate(); err != nil {
			return fmt.Errorf("invalid location: %w", err)
		}
	}
	return nil
}

func validateSpecies(s string) error {
	if len(s) > maxSpeciesLength {
		return fmt.Errorf("species must not exceed %d characters", maxSpeciesLength)
	}
	if hasControl(s) {
		return fmt.Errorf("species must not contain control characters")
	}
	return nil
}

func validateContainerSize(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("container size must be a non-negative number")
	}
	return nil
}

// ValidateBedInput checks a bed before it is created.
func ValidateBedInput(in models.NewBedInput) error {
	if _, err := models.NewSlug(in.ID); err != nil {
		return err
	}
	if err := validateSpecies(in.Species); err != nil {
		return err
	}
	if in.PlantCount < 0 {
		return fmt.Errorf("plant count must not be negative")
	}
	if err := validateContainerSize(in.ContainerSize); err != nil {
		return err
	}
	if _, err := models.ParseBedState(string(in.State)); err != nil {
		return err
	}
	if in.PlantingDate != nil && in.EstimatedHarvestDate != nil && in.EstimatedHarvestDate.Before(*in.PlantingDate) {
		return fmt.Errorf("estimated harvest date must not precede planting date")
	}
	return nil
}

// ValidateBedPatch checks the fields a bed update sets.
func ValidateBedPatch(p models.BedPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("update sets no fields")
	}
	if p.Species != nil {
		if err := validateSpecies(*p.Species); err != nil {
			return err
		}
	}
	if p.PlantCount != nil && *p.PlantCount < 0 {
		return fmt.Errorf("plant count must not be negative")
	}
	if p.ContainerSize != nil {
		if err := validateContainerSize(*p.ContainerSize); err != nil {
			return err
		}
	}
	if p.State != nil {
		if *p.State == "" {
			return fmt.Errorf("state must not be empty")
		}
		if _, err := models.ParseBedState(string(*p.State)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCuttingBatchInput checks a cutting batch before it is created.
func ValidateCuttingBatchInput(in models.NewCuttingBatchInput) error {
	if in.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", in.Quantity)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("date must be set")
	}
	if _, err := models.ParseQuality(string(in.Quality)); err != nil {
		return err
	}
	return validateText("notes", in.Notes)
}

// ValidateCuttingBatchPatch checks the fields a cutting batch update sets.
func ValidateCuttingBatchPatch(p models.CuttingBatchPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("update sets no fields")
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", *p.Quantity)
	}
	if p.Date != nil && p.Date.IsZero() {
		return fmt.Errorf("date must be set")
	}
	if p.Quality != nil {
		if _, err := models.ParseQuality(string(*p.Quality)); err != nil {
			return err
		}
	}
	if p.Notes != nil {
		return validateText("notes", *p.Notes)
	}
	return nil
}
