package normalize

import (
	"strings"
	"testing"

	"scorenorm/domain/core"
	"scorenorm/domain/scorecard"
)

func gridOf(rows ...[]string) *scorecard.Grid {
	return &scorecard.Grid{
		Source: core.NewSourceID("/test/grid.csv"),
		Path:   "/test/grid.csv",
		Rows:   rows,
	}
}

// TestDetectHeaderAmongNoise tests that an unambiguous header is
// selected exactly, regardless of surrounding noise rows
func TestDetectHeaderAmongNoise(t *testing.T) {
	prose := strings.Repeat("this sheet configures the retail scorecard for the quarter ", 2)
	grid := gridOf(
		[]string{"Retail Scorecard Export"},
		[]string{prose, prose, prose},
		[]string{"", "", "", ""},
		[]string{"Measure Group", "Standard KPIs", "Measure Display Name", "Definition", "Target", "Weight"},
		[]string{"Availability", "kpi_1", "In Stock %", "defn text", "85%", "2"},
	)

	candidate := NewHeaderDetector(DefaultDetectorConfig()).Detect(grid)
	if candidate.RowIndex != 3 {
		t.Errorf("Expected header at row 3, got %d (score %d)", candidate.RowIndex, candidate.Score)
	}
	if candidate.Score < DefaultDetectorConfig().MinScore {
		t.Errorf("Expected confident score, got %d", candidate.Score)
	}
}

// TestDetectHeaderDeepInGrid tests detection at the edge of the scan window
func TestDetectHeaderDeepInGrid(t *testing.T) {
	rows := make([][]string, 0, 30)
	for i := 0; i < 29; i++ {
		rows = append(rows, []string{"note"})
	}
	rows = append(rows, []string{"Grouping Name", "Metric Name", "Target", "Weight", "Order"})
	grid := gridOf(rows...)

	candidate := NewHeaderDetector(DefaultDetectorConfig()).Detect(grid)
	if candidate.RowIndex != 29 {
		t.Errorf("Expected header at row 29, got %d", candidate.RowIndex)
	}
}

// TestDetectFallbackWithoutConfidence tests degradation to the
// fallback row instead of failure
func TestDetectFallbackWithoutConfidence(t *testing.T) {
	grid := gridOf(
		[]string{"alpha", "beta", "gamma", "delta"},
		[]string{"1", "2", "3", "4"},
	)

	config := DefaultDetectorConfig()
	config.FallbackRow = 0

	candidate := NewHeaderDetector(config).Detect(grid)
	if candidate.RowIndex != config.FallbackRow {
		t.Errorf("Expected fallback row %d, got %d", config.FallbackRow, candidate.RowIndex)
	}
	if candidate.Score != 0 {
		t.Errorf("Expected zero score on fallback, got %d", candidate.Score)
	}
}

// TestScoreRowKeywordWeights pins the group weights: target 3,
// weight 3, metric name 2, retailer 1, plus the short-cell bonus
func TestScoreRowKeywordWeights(t *testing.T) {
	detector := NewHeaderDetector(DefaultDetectorConfig())

	score, ok := detector.ScoreRow([]string{"Target", "Weight", "Metric Name", "Retailer"})
	if !ok {
		t.Fatal("Expected row to be scoreable")
	}
	// 3 + 3 + 2 + 1 keyword weights, +2 for four short cells
	if score != 11 {
		t.Errorf("Expected score 11, got %d", score)
	}
}

// TestScoreRowEmptyPenalty tests the mostly-empty row penalty
func TestScoreRowEmptyPenalty(t *testing.T) {
	detector := NewHeaderDetector(DefaultDetectorConfig())

	row := []string{"Target", "Weight", "Metric Name", "Retailer"}
	for i := 0; i < 16; i++ {
		row = append(row, "")
	}

	score, ok := detector.ScoreRow(row)
	if !ok {
		t.Fatal("Expected row to be scoreable")
	}
	// 11 as above, minus 5 for 80% empty cells
	if score != 6 {
		t.Errorf("Expected score 6, got %d", score)
	}
}

// TestScoreRowSkipsSparseRows tests that rows with fewer than three
// non-empty cells are not header-like
func TestScoreRowSkipsSparseRows(t *testing.T) {
	detector := NewHeaderDetector(DefaultDetectorConfig())

	if _, ok := detector.ScoreRow([]string{"Target", "Weight"}); ok {
		t.Error("Expected two-cell row to be skipped")
	}
	if _, ok := detector.ScoreRow([]string{"", "", ""}); ok {
		t.Error("Expected blank row to be skipped")
	}
	if _, ok := detector.ScoreRow(nil); ok {
		t.Error("Expected nil row to be skipped")
	}
}

// TestScoreRowSkipsProseRows tests that rows with more than two long
// cells are treated as instructions, not headers
func TestScoreRowSkipsProseRows(t *testing.T) {
	detector := NewHeaderDetector(DefaultDetectorConfig())
	long := strings.Repeat("enter the target for each measure here ", 3)

	if _, ok := detector.ScoreRow([]string{long, long, long, "Target"}); ok {
		t.Error("Expected prose row to be skipped")
	}

	// Two long cells are still allowed
	if _, ok := detector.ScoreRow([]string{long, long, "Target", "Weight"}); !ok {
		t.Error("Expected row with two long cells to remain eligible")
	}
}

// TestScoreRowLongCellCannotMatchKeyword tests the per-group length
// guard against matching inside prose
func TestScoreRowLongCellCannotMatchKeyword(t *testing.T) {
	detector := NewHeaderDetector(DefaultDetectorConfig())

	prose := "set each target value according to the playbook" // 47 chars, contains "target"
	score, ok := detector.ScoreRow([]string{prose, "aaaa", "bbbb", "cccc", "dddd"})
	if !ok {
		t.Fatal("Expected row to be scoreable")
	}
	// No keyword group may match: the only "target" lives in a cell
	// longer than the group max length. The short-cell bonus still applies.
	if score != 2 {
		t.Errorf("Expected score 2 (bonus only), got %d", score)
	}
}

// TestDetectTieBreaksEarlier tests deterministic selection when two
// rows score equally
func TestDetectTieBreaksEarlier(t *testing.T) {
	header := []string{"Measure Group", "Standard KPIs", "Measure Display Name", "Definition"}
	grid := gridOf(header, header)

	candidate := NewHeaderDetector(DefaultDetectorConfig()).Detect(grid)
	if candidate.RowIndex != 0 {
		t.Errorf("Expected earliest of tied rows, got %d", candidate.RowIndex)
	}
}
