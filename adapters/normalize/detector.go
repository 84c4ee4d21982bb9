package normalize

import (
	"log"
	"strings"

	"scorenorm/domain/scorecard"
)

// KeywordGroup scores one canonical-column concept during header
// detection. A group matches a row when any cell contains any of its
// keywords; cells longer than MaxLen cannot match, which keeps prose
// rows from scoring on incidental words.
type KeywordGroup struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Weight   int      `json:"weight"`
	MaxLen   int      `json:"max_len"`
}

// DetectorConfig defines the detection thresholds and keyword groups
type DetectorConfig struct {
	MaxScanRows int            `json:"max_scan_rows"` // candidate rows inspected from the top
	MinScore    int            `json:"min_score"`     // confidence floor for accepting a candidate
	FallbackRow int            `json:"fallback_row"`  // header assumed when nothing is confident
	Groups      []KeywordGroup `json:"groups"`
}

// DefaultDetectorConfig returns the tuning used for retail scorecard
// exports
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MaxScanRows: 30,
		MinScore:    5,
		FallbackRow: 0,
		Groups:      DefaultKeywordGroups(),
	}
}

// DefaultKeywordGroups returns the canonical-column keyword groups
// with their detection weights
func DefaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{Name: "target", Keywords: []string{"target", "targ"}, Weight: 3, MaxLen: 40},
		{Name: "weight", Keywords: []string{"weight", "weig"}, Weight: 3, MaxLen: 40},
		{Name: "measure_group", Keywords: []string{"measure group", "grouping name", "grouping"}, Weight: 3, MaxLen: 40},
		{Name: "metric_name", Keywords: []string{"metric name", "measure name", "display name"}, Weight: 2, MaxLen: 40},
		{Name: "selection", Keywords: []string{"selection", "add measure"}, Weight: 2, MaxLen: 40},
		{Name: "kpis", Keywords: []string{"kpi"}, Weight: 2, MaxLen: 40},
		{Name: "definition", Keywords: []string{"definition"}, Weight: 1, MaxLen: 40},
		{Name: "retailer", Keywords: []string{"retailer"}, Weight: 1, MaxLen: 40},
		{Name: "order", Keywords: []string{"order"}, Weight: 1, MaxLen: 40},
	}
}

const (
	minHeaderCells    = 3  // rows with fewer non-empty cells are not header-like
	maxLongCells      = 2  // more cells over longCellLimit marks a prose row
	longCellLimit     = 50 // characters
	shortCellLimit    = 30 // characters; short cells look like labels
	shortCellBonusMin = 4  // short non-empty cells needed for the bonus
	shortCellBonus    = 2
	emptyRowPenalty   = 5
	emptyRatioLimit   = 0.7
)

// HeaderDetector locates the header row in a grid prefix by scored
// keyword matching. Absence of a confident match degrades to the
// configured fallback row, never to an error.
type HeaderDetector struct {
	config DetectorConfig
}

// NewHeaderDetector creates a detector with the given config
func NewHeaderDetector(config DetectorConfig) *HeaderDetector {
	return &HeaderDetector{config: config}
}

// Detect returns the best header candidate for the grid. When no row
// clears the minimum score the fallback row is returned with a zero
// score.
func (d *HeaderDetector) Detect(grid *scorecard.Grid) scorecard.HeaderCandidate {
	best := scorecard.HeaderCandidate{RowIndex: -1, Score: 0}

	for i, row := range grid.Prefix(d.config.MaxScanRows) {
		score, ok := d.ScoreRow(row)
		if !ok {
			continue
		}
		if score > best.Score {
			best = scorecard.HeaderCandidate{RowIndex: i, Score: score}
		}
	}

	if best.RowIndex < 0 || best.Score < d.config.MinScore {
		log.Printf("[HeaderDetector] No confident header (best score %d), falling back to row %d",
			best.Score, d.config.FallbackRow)
		return scorecard.HeaderCandidate{RowIndex: d.config.FallbackRow, Score: 0}
	}

	log.Printf("[HeaderDetector] Header detected at row %d (score %d)", best.RowIndex, best.Score)
	return best
}

// ScoreRow scores a single candidate row. The second return is false
// for rows disqualified outright: too few cells to be a header, or
// too much prose.
func (d *HeaderDetector) ScoreRow(row []string) (int, bool) {
	if len(row) == 0 {
		return 0, false
	}

	nonEmpty := 0
	longCells := 0
	shortCells := 0
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if len(trimmed) > longCellLimit {
			longCells++
		}
		if len(trimmed) < shortCellLimit {
			shortCells++
		}
	}

	if nonEmpty < minHeaderCells {
		return 0, false
	}
	if longCells > maxLongCells {
		return 0, false
	}

	score := 0
	for _, group := range d.config.Groups {
		if d.groupMatches(group, row) {
			score += group.Weight
		}
	}

	if shortCells >= shortCellBonusMin {
		score += shortCellBonus
	}

	emptyRatio := float64(len(row)-nonEmpty) / float64(len(row))
	if emptyRatio > emptyRatioLimit {
		score -= emptyRowPenalty
	}

	return score, true
}

func (d *HeaderDetector) groupMatches(group KeywordGroup, row []string) bool {
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" || len(trimmed) > group.MaxLen {
			continue
		}
		if ContainsAny(NormalizeLabel(trimmed), group.Keywords) {
			return true
		}
	}
	return false
}
