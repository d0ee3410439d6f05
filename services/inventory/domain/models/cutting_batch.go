package models

import (
	"fmt"
	"time"
)

// Quality grades a cutting batch. Empty means ungraded.
type Quality string

const (
	QualityUngraded  Quality = ""
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// ParseQuality validates s.
func ParseQuality(s string) (Quality, error) {
	switch q := Quality(s); q {
	case QualityUngraded, QualityExcellent, QualityGood, QualityFair, QualityPoor:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quality grade %q", s)
	}
}

// CuttingBatch ("corte") records one harvest or propagation event on a bed.
type CuttingBatch struct {
	ID          string
	NurseryID   string
	BedID       string
	Date        time.Time
	Quantity    int
	Quality     Quality
	Notes       string
	Responsible string
	Audit
}

// NewCuttingBatchInput carries the caller-authored fields of a batch.
type NewCuttingBatchInput struct {
	Date        time.Time
	Quantity    int
	Quality     Quality
	Notes       string
	Responsible string
}

// CuttingBatchPatch is a partial update. Nil fields are left untouched.
type CuttingBatchPatch struct {
	Date        *time.Time
	Quantity    *int
	Quality     *Quality
	Notes       *string
	Responsible *string
}

// IsEmpty reports whether the patch changes nothing.
func (p CuttingBatchPatch) IsEmpty() bool {
	return p.Date == nil && p.Quantity == nil && p.Quality == nil && p.Notes == nil && p.Responsible == nil
}

// AffectsStatistics reports whether applying the patch can change the bed's
// derived statistics (sum of quantities, last cut date).
func (p CuttingBatchPatch) AffectsStatistics() bool {
	return p.Date != nil || p.Quantity != nil
}
