package scorecard

import (
	"strings"
)

// AllRetailers is the wildcard retailer key. An override filed under
// it applies to a metric for every retailer without a specific entry.
const AllRetailers = "ALL"

// Override carries per-metric replacement values resolved before the
// default-fill pass. Nil pointers leave the projected value alone.
type Override struct {
	Metric   string   `json:"metric"`
	Retailer string   `json:"retailer"`
	Target   *float64 `json:"target,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
}

// OverrideTable resolves per-metric overrides, keyed by metric name
// and optionally by retailer with an ALL-retailers wildcard fallback.
type OverrideTable struct {
	entries map[string]Override
}

// NewOverrideTable creates an empty override table
func NewOverrideTable() *OverrideTable {
	return &OverrideTable{entries: make(map[string]Override)}
}

// Put registers an override. A later entry for the same metric and
// retailer replaces the earlier one.
func (t *OverrideTable) Put(o Override) {
	if strings.TrimSpace(o.Metric) == "" {
		return
	}
	if strings.TrimSpace(o.Retailer) == "" {
		o.Retailer = AllRetailers
	}
	t.entries[overrideKey(o.Metric, o.Retailer)] = o
}

// Resolve looks up the override for a metric, preferring the exact
// retailer entry and falling back to the ALL-retailers wildcard.
func (t *OverrideTable) Resolve(metric, retailer string) (Override, bool) {
	if retailer != "" {
		if o, ok := t.entries[overrideKey(metric, retailer)]; ok {
			return o, true
		}
	}
	o, ok := t.entries[overrideKey(metric, AllRetailers)]
	return o, ok
}

// Len returns the number of registered overrides
func (t *OverrideTable) Len() int {
	return len(t.entries)
}

// IsEmpty reports whether the table has no entries
func (t *OverrideTable) IsEmpty() bool {
	return len(t.entries) == 0
}

func overrideKey(metric, retailer string) string {
	return strings.ToLower(strings.TrimSpace(metric)) + "\x00" + strings.ToLower(strings.TrimSpace(retailer))
}
