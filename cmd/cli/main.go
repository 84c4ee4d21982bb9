package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"scorenorm/adapters/export"
	"scorenorm/adapters/normalize"
	"scorenorm/adapters/overrides"
	"scorenorm/adapters/tabular"
	"scorenorm/app"
	"scorenorm/internal/config"
	"scorenorm/internal/poll"
	"scorenorm/internal/profiling"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "scorenorm",
		Short: "Normalize messy retail scorecard exports into canonical records",
	}

	rootCmd.AddCommand(
		newNormalizeCmd(cfg),
		newInspectCmd(cfg),
		newProfileCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newNormalizeCmd(cfg *config.Config) *cobra.Command {
	var format string
	var outDir string
	var overridesPath string
	var sheet string
	var waitStable bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "normalize [files...]",
		Short: "Normalize scorecard files and export canonical records",
		Long: `Normalize one or more scorecard exports into canonical records.

Each file's header row is found by scoring candidate rows, its layout is
classified once, and the projected records are written to the output
directory as <name>_normalized.<format>.

Skipped and filtered row counts are reported per file; only files that
cannot be read or recognized at all count as failures.

Example: scorenorm normalize q3_walmart.xlsx q3_kroger.csv --format json --out ./normalized`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 && cfg.Paths.InputFile != "" {
				files = []string{cfg.Paths.InputFile}
			}
			if len(files) == 0 {
				return fmt.Errorf("no input files given (pass paths or set INPUT_FILE)")
			}
			return runNormalize(cmd.Context(), cfg, files, format, outDir, overridesPath, sheet, waitStable, concurrency)
		},
	}

	cmd.Flags().StringVar(&format, "format", cfg.Export.Format, "Output format: csv|json|xlsx")
	cmd.Flags().StringVar(&outDir, "out", cfg.Export.OutDir, "Directory for normalized output files")
	cmd.Flags().StringVar(&overridesPath, "overrides", cfg.Paths.OverridesFile, "CSV sidecar with per-metric target/weight overrides")
	cmd.Flags().StringVar(&sheet, "sheet", cfg.Paths.Sheet, "Worksheet to read from workbook inputs")
	cmd.Flags().BoolVar(&waitStable, "wait-stable", false, "Wait for each input file to stop changing before reading it")
	cmd.Flags().IntVar(&concurrency, "concurrency", int(cfg.Batch.Concurrency), "Files normalized in parallel")

	return cmd
}

func newInspectCmd(cfg *config.Config) *cobra.Command {
	var sheet string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show detected header row, score, and column mapping for a file",
		Long: `Inspect how a scorecard file would be interpreted without normalizing it.

Shows the scored header row, the classified layout, and which canonical
field each column was mapped onto. A file no layout can claim is reported
with the header labels that were found, so the mismatch can be diagnosed.

Example: scorenorm inspect q3_walmart.xlsx --sheet Scorecard`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cfg, args[0], sheet, jsonOut)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", cfg.Paths.Sheet, "Worksheet to read from workbook inputs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")

	return cmd
}

func newProfileCmd(cfg *config.Config) *cobra.Command {
	var sheet string
	var overridesPath string

	cmd := &cobra.Command{
		Use:   "profile [file]",
		Short: "Normalize a file and summarize its numeric fields",
		Long: `Normalize a scorecard file and report distribution statistics for its
numeric fields: targets, weights, and display ordering.

Example: scorenorm profile q3_walmart.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd.Context(), cfg, args[0], sheet, overridesPath)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", cfg.Paths.Sheet, "Worksheet to read from workbook inputs")
	cmd.Flags().StringVar(&overridesPath, "overrides", cfg.Paths.OverridesFile, "CSV sidecar with per-metric target/weight overrides")

	return cmd
}

func runNormalize(ctx context.Context, cfg *config.Config, files []string, format, outDir, overridesPath, sheet string, waitStable bool, concurrency int) error {
	sink, err := export.ForFormat(format)
	if err != nil {
		return err
	}

	if waitStable {
		pollCfg := poll.Config{
			Initial:    cfg.Poll.Initial,
			MaxRetries: int(cfg.Poll.MaxRetries),
			Budget:     cfg.Poll.Budget,
		}
		for _, file := range files {
			fmt.Printf("Waiting for %s to settle...\n", file)
			if err := poll.Until(ctx, pollCfg, poll.FileSettled(file)); err != nil {
				return fmt.Errorf("waiting for %s failed: %w", file, err)
			}
		}
	}

	service := app.NewNormalizerService(tabular.NewGridReader(), overrides.NewLoader(), detectorConfig(cfg))
	batch := app.NewBatchNormalizer(service, concurrency)

	reqs := make([]app.NormalizeRequest, len(files))
	for i, file := range files {
		reqs[i] = app.NormalizeRequest{Path: file, Sheet: sheet, OverridesPath: overridesPath}
	}

	outcomes := batch.NormalizeAll(ctx, reqs)

	failures := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures++
			fmt.Printf("\n❌ %s: %v\n", outcome.Path, outcome.Err)
			continue
		}

		result := outcome.Result
		outPath := filepath.Join(outDir, outputName(outcome.Path, format))
		if err := sink.Write(ctx, result, outPath); err != nil {
			failures++
			fmt.Printf("\n❌ %s: %v\n", outcome.Path, err)
			continue
		}

		fmt.Printf("\n📊 %s\n", outcome.Path)
		fmt.Printf("Layout: %s (header row %d)\n", result.Layout, result.HeaderRow)
		fmt.Printf("Records: %d | Skipped: %d | Filtered: %d\n",
			len(result.Records), result.RowsSkipped, result.RowsFiltered)
		if len(result.CellErrors) > 0 {
			fmt.Printf("Cells recovered with defaults: %d\n", len(result.CellErrors))
			for _, cellErr := range result.CellErrors {
				fmt.Printf("   row %d, %s: %q\n", cellErr.RowIndex, cellErr.Field, cellErr.Value)
			}
		}
		fmt.Printf("Fingerprint: %s\n", result.Fingerprint)
		fmt.Printf("💾 Saved to: %s\n", outPath)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(outcomes))
	}

	fmt.Printf("\n✅ %d file(s) normalized\n", len(outcomes))
	return nil
}

func runInspect(ctx context.Context, cfg *config.Config, path, sheet string, jsonOut bool) error {
	service := app.NewNormalizerService(tabular.NewGridReader(), overrides.NewLoader(), detectorConfig(cfg))

	report, err := service.Inspect(ctx, path, sheet)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("📋 %s\n", report.Path)
	if report.Sheet != "" {
		fmt.Printf("Sheet: %s\n", report.Sheet)
	}
	fmt.Printf("Rows: %d\n", report.RowCount)
	fmt.Printf("Header: row %d (score %d)\n", report.HeaderRow, report.HeaderScore)

	if report.Problem != "" {
		fmt.Printf("\n❌ %s\n", report.Problem)
		if len(report.Labels) > 0 {
			fmt.Printf("Header labels found: %s\n", strings.Join(report.Labels, ", "))
		}
		return nil
	}

	fmt.Printf("Layout: %s\n", report.Layout)
	fmt.Printf("\nColumn mapping:\n")
	for _, field := range report.Columns.Fields() {
		col, _ := report.Columns.Col(field)
		fmt.Printf("   %-22s column %d\n", field, col)
	}

	return nil
}

func runProfile(ctx context.Context, cfg *config.Config, path, sheet, overridesPath string) error {
	service := app.NewNormalizerService(tabular.NewGridReader(), overrides.NewLoader(), detectorConfig(cfg))

	result, _, err := service.Normalize(ctx, app.NormalizeRequest{
		Path:          path,
		Sheet:         sheet,
		OverridesPath: overridesPath,
	})
	if err != nil {
		return fmt.Errorf("normalization failed: %w", err)
	}

	report := profiling.NewProfiler().Profile(result)
	fmt.Println(report.String())

	return nil
}

// detectorConfig applies the environment's detection tuning on top of
// the stock keyword groups.
func detectorConfig(cfg *config.Config) normalize.DetectorConfig {
	return normalize.DetectorConfig{
		MaxScanRows: cfg.Detection.MaxScanRows,
		MinScore:    cfg.Detection.MinScore,
		FallbackRow: cfg.Detection.FallbackRow,
		Groups:      normalize.DefaultKeywordGroups(),
	}
}

func outputName(path, format string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_normalized.%s", stem, format)
}
