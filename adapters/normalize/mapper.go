package normalize

import (
	"log"
	"strings"

	"scorenorm/domain/scorecard"
)

// ColumnMapper translates header cell text into canonical field
// positions, tolerating spelling and spacing variants. Classification
// walks a fixed rule order so the most specific token always wins: a
// column naming both retailer and target is the retailer-target
// column, never the generic target.
type ColumnMapper struct{}

// NewColumnMapper creates a mapper
func NewColumnMapper() *ColumnMapper {
	return &ColumnMapper{}
}

// Map classifies every header cell left to right. The first column
// matched to a field keeps it; later duplicates are ignored, which
// makes the mapping deterministic for a given header row.
func (m *ColumnMapper) Map(header []string) scorecard.ColumnMap {
	columns := make(scorecard.ColumnMap)

	for idx, cell := range header {
		label := NormalizeLabel(cell)
		if label == "" {
			continue
		}
		field := m.Classify(label)
		if field == "" {
			continue
		}
		if _, taken := columns[field]; taken {
			continue
		}
		columns[field] = idx
	}

	log.Printf("[ColumnMapper] Mapped %d of %d header cells", len(columns), len(header))
	return columns
}

// Classify assigns one normalized label to a canonical field, or ""
// when nothing applies. Rule order is the priority order.
func (m *ColumnMapper) Classify(label string) scorecard.Field {
	// Combined retailer columns before the generic ones they contain
	if strings.Contains(label, "retailer") && strings.Contains(label, "targ") {
		return scorecard.FieldRetailerTarget
	}
	if strings.Contains(label, "retailer") && strings.Contains(label, "weig") {
		return scorecard.FieldRetailerWeight
	}
	if strings.Contains(label, "retailer") {
		return scorecard.FieldRetailer
	}

	if ContainsAny(label, []string{"measure group", "grouping name", "grouping"}) {
		return scorecard.FieldMeasureGroup
	}
	if ContainsAny(label, []string{"selection", "add measure"}) {
		return scorecard.FieldSelection
	}
	if strings.Contains(label, "kpi") {
		return scorecard.FieldStandardKPIs
	}

	// Display name beats the internal metric name when both exist;
	// they map to distinct fields and the projector prefers display
	if strings.Contains(label, "display name") {
		return scorecard.FieldMeasureDisplayName
	}
	if ContainsAny(label, []string{"metric name", "measure name", "internal name", "standard name"}) {
		return scorecard.FieldMetricName
	}

	if ContainsAny(label, []string{"definition", "defn"}) {
		return scorecard.FieldDefinition
	}
	if strings.Contains(label, "targ") {
		return scorecard.FieldTarget
	}
	if strings.Contains(label, "weig") {
		return scorecard.FieldWeight
	}
	if strings.Contains(label, "order") {
		return scorecard.FieldOrder
	}

	return ""
}
