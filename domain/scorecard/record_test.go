package scorecard

import (
	"testing"
)

// TestFillDefaults tests default filling for blank weight and target
func TestFillDefaults(t *testing.T) {
	r := Record{MeasureGroup: "Availability"}
	r.FillDefaults()

	if r.Weight == nil || *r.Weight != DefaultWeight {
		t.Errorf("Expected blank weight to default to %v, got %v", DefaultWeight, r.Weight)
	}
	if r.Target == nil || *r.Target != DefaultTarget {
		t.Errorf("Expected blank target to default to %v, got %v", DefaultTarget, r.Target)
	}
}

// TestFillDefaultsZeroSurvives tests that an explicit zero is not blank
func TestFillDefaultsZeroSurvives(t *testing.T) {
	zero := 0.0
	r := Record{MeasureGroup: "Availability", Weight: &zero, Target: &zero}
	r.FillDefaults()

	if *r.Weight != 0.0 {
		t.Errorf("Expected explicit zero weight to survive default fill, got %v", *r.Weight)
	}
	if *r.Target != 0.0 {
		t.Errorf("Expected explicit zero target to survive default fill, got %v", *r.Target)
	}
}

// TestHasGroupingKey tests the primary grouping field invariant
func TestHasGroupingKey(t *testing.T) {
	tests := []struct {
		group    string
		expected bool
	}{
		{"Availability", true},
		{"", false},
		{"   ", false},
		{" Promotions ", true},
	}

	for _, test := range tests {
		r := Record{MeasureGroup: test.group}
		if r.HasGroupingKey() != test.expected {
			t.Errorf("Expected HasGroupingKey(%q) = %v", test.group, test.expected)
		}
	}
}

// TestFingerprintableDeterminism tests that equal record sets render equal
func TestFingerprintableDeterminism(t *testing.T) {
	w := 2.5
	records := []Record{
		{MeasureGroup: "Availability", StandardKPIs: "kpi_1", MeasureDisplayName: "In Stock %", Weight: &w},
	}

	a := Fingerprintable(records)
	b := Fingerprintable(records)

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("Expected one rendered map per record, got %d and %d", len(a), len(b))
	}
	for k, v := range a[0] {
		if b[0][k] != v {
			t.Errorf("Expected identical rendering for key %s, got %v and %v", k, v, b[0][k])
		}
	}
}
