package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/cyberbench/core"
)

// WriteReport writes report as indented JSON, creating parent directories.
func WriteReport(path string, report *core.Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*core.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report core.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &report, nil
}

// PrintSummary renders the per-entry scores and the aggregate as a table.
func PrintSummary(w io.Writer, report *core.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tREL\tACC\tCOMP\tSEM\tCOMPOSITE\tFALLBACKS")
	for _, e := range report.DetailedResults {
		fallbacks := make([]string, len(e.Fallbacks))
		for i, f := range e.Fallbacks {
			fallbacks[i] = string(f)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n",
			e.ID, e.Category,
			e.Scores.Relevance, e.Scores.Accuracy, e.Scores.CompletenessScore,
			e.SemanticSimilarity, e.Scores.Composite,
			strings.Join(fallbacks, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := report.Summary
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	if s.Partial {
		fmt.Fprintln(w, "BENCHMARK RESULT (partial)")
	} else {
		fmt.Fprintln(w, "BENCHMARK RESULT")
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total entries evaluated: %d\n", s.TotalEntries)
	fmt.Fprintf(w, "Average Relevance Score: %.1f%%\n", s.Averages.Relevance*100)
	fmt.Fprintf(w, "Average Accuracy Score: %.1f%%\n", s.Averages.Accuracy*100)
	fmt.Fprintf(w, "Average Completeness Score: %.1f%%\n", s.Averages.CompletenessScore*100)
	fmt.Fprintf(w, "Average Semantic Similarity: %.1f%%\n", s.AverageScore*100)
	fmt.Fprintf(w, "Average Composite Score: %.1f%%\n", s.Averages.Composite*100)
	fmt.Fprintln(w, rule)
	_, err := fmt.Fprintf(w, "Overall Performance Rating: %s\n", s.PerformanceRating)
	return err
}
