package profiling

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"scorenorm/domain/scorecard"
)

// FieldSummary is the distribution of one numeric field across the
// emitted records
type FieldSummary struct {
	Field   string  `json:"field"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Q25     float64 `json:"q25"`
	Q75     float64 `json:"q75"`
}

// Report summarizes the numeric fields of a normalized result so a
// human can sanity-check a source file before uploading it anywhere
type Report struct {
	Path    string           `json:"path"`
	Layout  scorecard.Layout `json:"layout"`
	Records int              `json:"records"`
	Groups  int              `json:"groups"`
	Fields  []FieldSummary   `json:"fields"`
}

// Profiler computes field distributions over normalized records
type Profiler struct{}

// NewProfiler creates a profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Profile summarizes the numeric fields of a result
func (p *Profiler) Profile(result *scorecard.NormalizeResult) Report {
	report := Report{
		Path:    result.Path,
		Layout:  result.Layout,
		Records: len(result.Records),
		Groups:  countGroups(result.Records),
	}

	targets := make([]float64, 0, len(result.Records))
	weights := make([]float64, 0, len(result.Records))
	orders := make([]float64, 0, len(result.Records))
	for _, r := range result.Records {
		if r.Target != nil {
			targets = append(targets, *r.Target)
		}
		if r.Weight != nil {
			weights = append(weights, *r.Weight)
		}
		if r.Order != nil {
			orders = append(orders, float64(*r.Order))
		}
	}

	report.Fields = []FieldSummary{
		summarize(string(scorecard.FieldTarget), targets, len(result.Records)),
		summarize(string(scorecard.FieldWeight), weights, len(result.Records)),
		summarize(string(scorecard.FieldOrder), orders, len(result.Records)),
	}
	return report
}

// summarize computes the distribution of one field. Quantiles need a
// few observations; on tiny samples they degrade to zero rather than
// failing the report.
func summarize(field string, values []float64, total int) FieldSummary {
	summary := FieldSummary{
		Field:   field,
		Count:   len(values),
		Missing: total - len(values),
	}
	if len(values) == 0 {
		return summary
	}

	summary.Mean, _ = stats.Mean(values)
	summary.Median, _ = stats.Median(values)
	summary.StdDev, _ = stats.StandardDeviation(values)
	summary.Min, _ = stats.Min(values)
	summary.Max, _ = stats.Max(values)
	summary.Q25, _ = stats.Percentile(values, 25)
	summary.Q75, _ = stats.Percentile(values, 75)

	return summary
}

func countGroups(records []scorecard.Record) int {
	groups := make(map[string]struct{})
	for _, r := range records {
		groups[strings.ToLower(strings.TrimSpace(r.MeasureGroup))] = struct{}{}
	}
	return len(groups)
}

// String renders the report as an aligned text table
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d records in %d measure groups (%s layout)\n",
		r.Path, r.Records, r.Groups, r.Layout)
	fmt.Fprintf(&b, "%-8s %6s %8s %9s %9s %9s %9s %9s %9s %9s\n",
		"field", "count", "missing", "mean", "median", "stddev", "min", "max", "q25", "q75")
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "%-8s %6d %8d %9.2f %9.2f %9.2f %9.2f %9.2f %9.2f %9.2f\n",
			f.Field, f.Count, f.Missing, f.Mean, f.Median, f.StdDev, f.Min, f.Max, f.Q25, f.Q75)
	}
	return b.String()
}
