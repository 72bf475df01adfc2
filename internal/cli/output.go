// Package cli formats engine results for the skillmatch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/skillmatch/internal/matching"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat accepts "text" or "json" (case-insensitive).
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("invalid output format %q (use text or json)", s)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search hits to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d skills for %q in %dms\n\n", response.Total, response.Query, response.QueryTime)
	for _, hit := range response.Hits {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | ID: %d\n", hit.Rank, hit.Score, hit.ID)
		fmt.Fprintf(w, "%s\n", utils.Truncate(hit.Text, 200))
		if len(hit.Metadata) > 0 {
			fmt.Fprintf(w, "Metadata: %s\n", formatMetadata(hit.Metadata))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteGapResult writes a gap analysis to w. Required skills are listed in
// input order when required is given, otherwise alphabetically.
func WriteGapResult(w io.Writer, result *models.GapResult, required []string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "\nSkill gap: %.2f%% (%d matched, %d missing)\n\n",
		result.GapPercentage, len(result.MatchedSkills), len(result.MissingSkills))

	order := required
	if len(order) == 0 {
		for name := range result.SimilarityScores {
			order = append(order, name)
		}
		sort.Strings(order)
	}
	matched := make(map[string]bool, len(result.MatchedSkills))
	for _, m := range result.MatchedSkills {
		matched[m] = true
	}
	for _, req := range order {
		mark := "✗"
		if matched[req] {
			mark = "✓"
		}
		score, ok := result.SimilarityScores[req]
		if !ok {
			fmt.Fprintf(w, "  %s %s\n", mark, req)
			continue
		}
		fmt.Fprintf(w, "  %s %-30s best: %-25s similarity: %.4f\n",
			mark, utils.Truncate(req, 30), utils.Truncate(score.MatchedSkill, 25), score.Similarity)
	}
	fmt.Fprintln(w)
	return nil
}

// WriteStatus writes engine status to w.
func WriteStatus(w io.Writer, st *matching.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Skills indexed:   %d\n", st.Index.Size)
	fmt.Fprintf(w, "Vocabulary size:  %d\n", st.Index.VocabularySize)
	if st.Index.ModelID != "" {
		fmt.Fprintf(w, "Model:            %s (fitted %s)\n", st.Index.ModelID, st.Index.FittedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(w, "Storage:          %s %s (key %s)\n", st.Backend, st.Index.Location, st.Index.Key)
	if st.DiskUsageBytes > 0 {
		fmt.Fprintf(w, "Disk usage:       %s\n", FormatBytes(st.DiskUsageBytes))
	}
	fmt.Fprintf(w, "Match threshold:  %.2f\n", st.MatchThreshold)
	fmt.Fprintf(w, "Search k:         default %d, max %d\n", st.DefaultK, st.MaxK)
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatMetadata(m models.Metadata) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}
