package engine

import (
	"path"
	"sort"
	"strings"
)

// NoExtension labels files without an extension in the per-extension breakdown.
const NoExtension = "(none)"

// Analysis is the statistics record produced by Engine.Analyse.
type Analysis struct {
	Overall          Overall         `json:"overall"`
	ByExtension      []ExtensionStat `json:"by_extension"`
	TopFilesByTokens []FileStat      `json:"top_files_by_tokens"`
}

// Overall holds project-wide totals.
type Overall struct {
	FileCount   int `json:"file_count"`
	TotalLines  int `json:"total_lines"`
	TotalTokens int `json:"total_tokens"`
}

// ExtensionStat aggregates all files sharing an extension.
type ExtensionStat struct {
	Extension string `json:"extension"`
	FileCount int    `json:"file_count"`
	Tokens    int    `json:"tokens"`
	Lines     int    `json:"lines"`
}

// FileStat describes one file.
type FileStat struct {
	Path   string `json:"path"`
	Tokens int    `json:"tokens"`
	Lines  int    `json:"lines"`
}

func analyse(files []sourceFile, topN int) *Analysis {
	a := &Analysis{
		ByExtension:      []ExtensionStat{},
		TopFilesByTokens: []FileStat{},
	}
	byExt := make(map[string]*ExtensionStat)

	for _, f := range files {
		tokens := CountTokens(f.Content)
		lines := CountLines(f.Content)

		a.Overall.FileCount++
		a.Overall.TotalTokens += tokens
		a.Overall.TotalLines += lines

		ext := strings.ToLower(path.Ext(f.Path))
		if ext == "" {
			ext = NoExtension
		}
		stat, ok := byExt[ext]
		if !ok {
			stat = &ExtensionStat{Extension: ext}
			byExt[ext] = stat
		}
		stat.FileCount++
		stat.Tokens += tokens
		stat.Lines += lines

		a.TopFilesByTokens = append(a.TopFilesByTokens, FileStat{Path: f.Path, Tokens: tokens, Lines: lines})
	}

	for _, stat := range byExt {
		a.ByExtension = append(a.ByExtension, *stat)
	}
	sort.Slice(a.ByExtension, func(i, j int) bool {
		x, y := a.ByExtension[i], a.ByExtension[j]
		if x.Tokens != y.Tokens {
			return x.Tokens > y.Tokens
		}
		return x.Extension < y.Extension
	})
	sort.Slice(a.TopFilesByTokens, func(i, j int) bool {
		x, y := a.TopFilesByTokens[i], a.TopFilesByTokens[j]
		if x.Tokens != y.Tokens {
			return x.Tokens > y.Tokens
		}
		return x.Path < y.Path
	})

	if topN > 0 {
		if len(a.ByExtension) > topN {
			a.ByExtension = a.ByExtension[:topN]
		}
		if len(a.TopFilesByTokens) > topN {
			a.TopFilesByTokens = a.TopFilesByTokens[:topN]
		}
	}
	return a
}
