// Package report renders forecast run records as formatted console reports.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/macrolabs/laborcast/models"
)

const lineWidth = 72

func rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", lineWidth))
}

// Print writes a full forecast report for one run.
func Print(w io.Writer, rec *models.RunRecord) {
	rule(w)
	fmt.Fprintf(w, "UNEMPLOYMENT RATE FORECAST :: registry %s\n", rec.RegistryVersion)
	fmt.Fprintf(w, "run %s at %s\n", rec.RunID, rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	rule(w)

	fmt.Fprintf(w, "Base rate (last observed):   %.2f%%\n\n", rec.BaseRate)

	fmt.Fprintf(w, "%-24s %-18s %12s %12s\n", "FACTOR", "CATEGORY", "WEIGHT", "ADJ (pp)")
	fmt.Fprintln(w, strings.Repeat("-", lineWidth))
	categories := factorCategories(rec)
	for _, adj := range rec.Adjustments {
		fmt.Fprintf(w, "%-24s %-18s %12.2f %+12.4f\n", adj.Key, categories[adj.Key], weightOf(rec, adj.Key), adj.Value)
	}
	fmt.Fprintln(w, strings.Repeat("-", lineWidth))
	fmt.Fprintf(w, "%-43s %24s\n", "Total adjustment", fmt.Sprintf("%+.4f pp", rec.TotalAdjustment))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Forecast:    %.2f%%\n", rec.FinalValue)
	fmt.Fprintf(w, "Confidence:  %.1f%%\n", rec.Confidence)
	rule(w)
}

// PrintComparison writes two runs side by side, typically the same
// observations computed under two registry versions.
func PrintComparison(w io.Writer, left, right *models.RunRecord) {
	rule(w)
	fmt.Fprintf(w, "REGISTRY COMPARISON :: %s vs %s\n", left.RegistryVersion, right.RegistryVersion)
	rule(w)

	fmt.Fprintf(w, "%-24s %20s %20s\n", "", left.RegistryVersion, right.RegistryVersion)
	fmt.Fprintln(w, strings.Repeat("-", lineWidth))
	fmt.Fprintf(w, "%-24s %19.2f%% %19.2f%%\n", "Base rate", left.BaseRate, right.BaseRate)

	for _, key := range unionKeys(left, right) {
		fmt.Fprintf(w, "%-24s %20s %20s\n", key, formatAdj(left, key), formatAdj(right, key))
	}

	fmt.Fprintln(w, strings.Repeat("-", lineWidth))
	fmt.Fprintf(w, "%-24s %20s %20s\n", "Total adjustment",
		fmt.Sprintf("%+.4f pp", left.TotalAdjustment), fmt.Sprintf("%+.4f pp", right.TotalAdjustment))
	fmt.Fprintf(w, "%-24s %19.2f%% %19.2f%%\n", "Forecast", left.FinalValue, right.FinalValue)
	fmt.Fprintf(w, "%-24s %19.1f%% %19.1f%%\n", "Confidence", left.Confidence, right.Confidence)
	fmt.Fprintf(w, "%-24s %20s\n", "Spread", fmt.Sprintf("%+.4f pp", right.FinalValue-left.FinalValue))
	rule(w)
}

func factorCategories(rec *models.RunRecord) map[string]string {
	out := make(map[string]string, len(rec.Factors))
	for _, f := range rec.Factors {
		out[f.Key] = f.Category
	}
	return out
}

func weightOf(rec *models.RunRecord, key string) float64 {
	for _, f := range rec.Factors {
		if f.Key == key {
			return f.Weight
		}
	}
	return 0
}

func formatAdj(rec *models.RunRecord, key string) string {
	for _, a := range rec.Adjustments {
		if a.Key == key {
			return fmt.Sprintf("%+.4f pp", a.Value)
		}
	}
	return "n/a"
}

// unionKeys merges both runs' factor keys, keeping the left run's order and
// appending keys only the right run has.
func unionKeys(left, right *models.RunRecord) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, a := range left.Adjustments {
		seen[a.Key] = true
		keys = append(keys, a.Key)
	}
	for _, a := range right.Adjustments {
		if !seen[a.Key] {
			keys = append(keys, a.Key)
		}
	}
	return keys
}
