package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "north", false},
		{"digits", "bed01", false},
		{"dashed", "north-field-2", false},
		{"max length", strings.Repeat("a", 64), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"uppercase", "North", true},
		{"space", "north field", true},
		{"leading dash", "-north", true},
		{"double dash", "north--field", true},
		{"slash", "north/beds", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSlug(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNewCuttingBatchID(t *testing.T) {
	t.Run("unique under same timestamp", func(t *testing.T) {
		now := time.Now()
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id, err := NewCuttingBatchID(now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen[id] {
				t.Fatalf("duplicate id %s", id)
			}
			seen[id] = true
		}
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		earlier, _ := NewCuttingBatchID(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
		later, _ := NewCuttingBatchID(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
		if earlier >= later {
			t.Fatalf("expected %s < %s", earlier, later)
		}
	})

	t.Run("round trips through validation", func(t *testing.T) {
		id, _ := NewCuttingBatchID(time.Now())
		if !ValidCuttingBatchID(id) {
			t.Fatalf("expected %s to be valid", id)
		}
		if ValidCuttingBatchID("not-a-ulid") {
			t.Fatal("expected garbage to be invalid")
		}
	})
}
