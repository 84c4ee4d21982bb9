package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Synthetic scorecard vocabulary. Grids built from it look like the
// retail exports the normalizer sees in the wild.
var (
	measureGroups = []string{"Availability", "Promotions", "Pricing", "Content", "Search"}
	metricStems   = []string{
		"In Stock %", "On Shelf %", "Promo Lift", "Display Share",
		"Price Gap", "Content Score", "Search Rank", "Fill Rate",
	}
	retailers = []string{"Walmart", "Kroger", "Target", "Costco"}
)

// Kit builds synthetic scorecard grids and files for tests. The same
// seed always yields the same fixtures.
type Kit struct {
	rng *rand.Rand
}

// New creates a kit seeded for reproducible fixtures
func New(seed int64) *Kit {
	return &Kit{rng: rand.New(rand.NewSource(seed))}
}

// SelectionGrid builds a grid in the selection-flag shape: a flag
// column plus the canonical named columns. Every third row carries a
// false flag so filtering paths get exercised.
func (k *Kit) SelectionGrid(metrics int) [][]string {
	rows := [][]string{{
		"Scorecard Measure Selection", "Measure Group", "Standard KPIs",
		"Measure Display Name", "Definition", "Target", "Weight",
	}}
	for i := 0; i < metrics; i++ {
		flag := "true"
		if i%3 == 2 {
			flag = "false"
		}
		metric := k.metric(i)
		rows = append(rows, []string{
			flag, k.group(i), fmt.Sprintf("kpi_%d", i+1), metric,
			"Tracks " + strings.ToLower(metric), k.targetCell(i), k.weightCell(i),
		})
	}
	return rows
}

// GroupingGrid builds a grid in the grouping shape with an explicit
// order column, blanked on every fourth row so positional fallback
// gets exercised
func (k *Kit) GroupingGrid(metrics int) [][]string {
	rows := [][]string{{
		"Grouping Name", "Metric Name", "Definition", "Order", "Target", "Weight",
	}}
	for i := 0; i < metrics; i++ {
		order := strconv.Itoa(i + 1)
		if i%4 == 3 {
			order = ""
		}
		metric := k.metric(i)
		rows = append(rows, []string{
			k.group(i), metric, "Tracks " + strings.ToLower(metric),
			order, k.targetCell(i), k.weightCell(i),
		})
	}
	return rows
}

// RetailerGrid builds a grouping-shaped grid with retailer-specific
// target and weight columns
func (k *Kit) RetailerGrid(metrics int) [][]string {
	rows := [][]string{{
		"Grouping Name", "Metric Name", "Retailer", "Target", "Retailer Target", "Weight",
	}}
	for i := 0; i < metrics; i++ {
		specific := ""
		if i%2 == 0 {
			specific = strconv.Itoa(60 + i)
		}
		rows = append(rows, []string{
			k.group(i), k.metric(i), retailers[i%len(retailers)],
			"50", specific, k.weightCell(i),
		})
	}
	return rows
}

// PlainGrid builds the headerless four-column shape under an all-blank
// first row
func (k *Kit) PlainGrid(metrics int) [][]string {
	rows := [][]string{{"", "", "", ""}}
	for i := 0; i < metrics; i++ {
		metric := k.metric(i)
		rows = append(rows, []string{
			k.group(i), fmt.Sprintf("kpi_%d", i+1), metric,
			"Tracks " + strings.ToLower(metric),
		})
	}
	return rows
}

// ArtifactGrid builds the degraded export shape: spreadsheet artifacts
// in the header and a leading index column shifting the data right
func (k *Kit) ArtifactGrid(metrics int) [][]string {
	rows := [][]string{{"#REF!", "Unnamed: 1", "Unnamed: 2", "Unnamed: 3", "Unnamed: 4"}}
	for i := 0; i < metrics; i++ {
		metric := k.metric(i)
		rows = append(rows, []string{
			strconv.Itoa(i), k.group(i), fmt.Sprintf("kpi_%d", i+1), metric,
			"Tracks " + strings.ToLower(metric),
		})
	}
	return rows
}

// WithTitleNoise prepends banner and blank rows above a grid, the way
// real exports bury their header
func (k *Kit) WithTitleNoise(rows [][]string, n int) [][]string {
	noise := make([][]string, 0, n+len(rows))
	for i := 0; i < n; i++ {
		switch i % 3 {
		case 0:
			noise = append(noise, []string{"Retail Scorecard Export", "", ""})
		case 1:
			// explicit empty cells so CSV round-trips keep the row
			noise = append(noise, []string{"", "", ""})
		default:
			noise = append(noise, []string{"Generated for internal review", "", ""})
		}
	}
	return append(noise, rows...)
}

func (k *Kit) group(i int) string {
	return measureGroups[i%len(measureGroups)]
}

func (k *Kit) metric(i int) string {
	stem := metricStems[i%len(metricStems)]
	if i >= len(metricStems) {
		return fmt.Sprintf("%s #%d", stem, i/len(metricStems)+1)
	}
	return stem
}

// targetCell cycles through the numeric spellings seen in real files
func (k *Kit) targetCell(i int) string {
	switch i % 4 {
	case 0:
		return strconv.Itoa(60+k.rng.Intn(40)) + "%"
	case 1:
		return strconv.Itoa(60 + k.rng.Intn(40))
	case 2:
		return "0." + strconv.Itoa(1+k.rng.Intn(9))
	}
	return ""
}

func (k *Kit) weightCell(i int) string {
	switch i % 3 {
	case 0:
		return strconv.Itoa(1 + k.rng.Intn(5))
	case 1:
		return "1.5"
	}
	return ""
}

// WriteCSV materializes a grid as a CSV file under dir
func WriteCSV(dir string, rows [][]string) (string, error) {
	path := filepath.Join(dir, "scorecard.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// WriteWorkbook materializes a grid as a single-sheet workbook under dir
func WriteWorkbook(dir, sheet string, rows [][]string) (string, error) {
	wb := excelize.NewFile()
	defer wb.Close()
	if sheet != "Sheet1" {
		wb.SetSheetName("Sheet1", sheet)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", err
		}
		if err := wb.SetSheetRow(sheet, start, &cells); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, "scorecard.xlsx")
	if err := wb.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteOverrides materializes override entries as a sidecar CSV under dir
func WriteOverrides(dir string, entries [][]string) (string, error) {
	path := filepath.Join(dir, "overrides.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Metric", "Retailer", "Target", "Weight"}); err != nil {
		return "", err
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}
