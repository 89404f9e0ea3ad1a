package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/dustin/go-humanize"
)

// Path column layout for the largest-files table.
const (
	pathColumnWidth = 40
	maxPathWidth    = 38
	keptPathSuffix  = 35
)

// FormatAnalysisReport renders an analysis as a plain-text report with an
// overall summary, a per-extension table and a largest-files table. The
// two tables are omitted when their lists are empty. The output depends
// only on the analysis, so equal inputs give byte-identical reports.
func FormatAnalysisReport(a *engine.Analysis) string {
	if a == nil {
		a = &engine.Analysis{}
	}
	var lines []string

	lines = append(lines,
		"--- Overall Project Summary ---",
		"Total Files:  "+comma(a.Overall.FileCount),
		"Total Lines:  "+comma(a.Overall.TotalLines),
		"Total Tokens: "+comma(a.Overall.TotalTokens),
		"",
	)

	if len(a.ByExtension) > 0 {
		lines = append(lines,
			fmt.Sprintf("--- Analysis by File Type (Top %d) ---", len(a.ByExtension)),
			fmt.Sprintf("%-12s | %6s | %10s | %8s | %15s", "Extension", "Files", "Tokens", "Lines", "Avg Tokens/File"),
			separator(12, 6, 10, 8, 15),
		)
		for _, row := range a.ByExtension {
			avg := 0.0
			if row.FileCount > 0 {
				avg = float64(row.Tokens) / float64(row.FileCount)
			}
			lines = append(lines, fmt.Sprintf("%-12s | %6s | %10s | %8s | %15s",
				row.Extension,
				comma(row.FileCount),
				comma(row.Tokens),
				comma(row.Lines),
				humanize.Comma(int64(math.RoundToEven(avg))),
			))
		}
		lines = append(lines, "")
	}

	if len(a.TopFilesByTokens) > 0 {
		lines = append(lines,
			fmt.Sprintf("--- Largest Files by Tokens (Top %d) ---", len(a.TopFilesByTokens)),
			fmt.Sprintf("%-40s | %10s | %8s", "File Path", "Tokens", "Lines"),
			separator(pathColumnWidth, 10, 8),
		)
		for _, row := range a.TopFilesByTokens {
			lines = append(lines, fmt.Sprintf("%-40s | %10s | %8s",
				truncatePath(row.Path), comma(row.Tokens), comma(row.Lines)))
		}
	}

	return strings.Join(lines, "\n")
}

// truncatePath shortens paths longer than maxPathWidth runes to "..."
// followed by their last keptPathSuffix runes.
func truncatePath(p string) string {
	r := []rune(p)
	if len(r) <= maxPathWidth {
		return p
	}
	return "..." + string(r[len(r)-keptPathSuffix:])
}

// separator draws dashes under each column, joined the way the columns are.
func separator(widths ...int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	return strings.Join(parts, "-+-")
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}
