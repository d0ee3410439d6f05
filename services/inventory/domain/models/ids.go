package models

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid"
)

const maxSlugLength = 64

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewSlug validates an externally assigned identifier for nurseries and beds:
// lowercase ASCII letters and digits in dash-separated groups, at most 64 bytes.
func NewSlug(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("id must not be empty")
	}
	if len(s) > maxSlugLength {
		return "", fmt.Errorf("id must not exceed %d characters", maxSlugLength)
	}
	if !slugPattern.MatchString(s) {
		return "", fmt.Errorf("id %q must be lowercase letters, digits and single dashes", s)
	}
	return s, nil
}

// NewCuttingBatchID returns a ULID for a batch created at t. The first 48 bits
// encode the creation millisecond so ids sort by creation time; the remaining
// 80 bits come from crypto/rand so concurrent writers do not collide.
func NewCuttingBatchID(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate cutting batch id: %w", err)
	}
	return id.String(), nil
}

// ValidCuttingBatchID reports whether s parses as a ULID.
func ValidCuttingBatchID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
