package engine

import (
	"path"
	"regexp"
	"strings"
)

// declarationPatterns match lines that open a declaration, per extension.
// Compression keeps these lines and elides everything in between.
var declarationPatterns = map[string][]*regexp.Regexp{
	".go": {
		regexp.MustCompile(`^package\s+\w+`),
		regexp.MustCompile(`^func\s+`),
		regexp.MustCompile(`^type\s+\w+`),
		regexp.MustCompile(`^(const|var)\s+\w+`),
	},
	".py": {
		regexp.MustCompile(`^\s*(async\s+)?def\s+\w+\s*\(`),
		regexp.MustCompile(`^\s*class\s+\w+`),
		regexp.MustCompile(`^\s*@\w+`),
	},
	".js":  jsPatterns,
	".jsx": jsPatterns,
	".ts":  jsPatterns,
	".tsx": jsPatterns,
	".mjs": jsPatterns,
	".java": {
		regexp.MustCompile(`^\s*(public|private|protected)?\s*(abstract\s+|final\s+|static\s+)*(class|interface|enum|record)\s+\w+`),
		regexp.MustCompile(`^\s*(public|private|protected)\s+[\w<>\[\],\s]*\w+\s*\([^)]*\)\s*(throws\s+[\w,\s]+)?\s*\{`),
	},
	".rs": {
		regexp.MustCompile(`^\s*(pub(\([^)]*\))?\s+)?(async\s+)?fn\s+\w+`),
		regexp.MustCompile(`^\s*(pub(\([^)]*\))?\s+)?(struct|enum|trait|type|mod)\s+\w+`),
		regexp.MustCompile(`^\s*impl\b`),
	},
	".cs": {
		regexp.MustCompile(`^\s*(public|private|protected|internal)?\s*(abstract\s+|sealed\s+|static\s+|partial\s+)*(class|interface|struct|enum|record)\s+\w+`),
		regexp.MustCompile(`^\s*(public|private|protected|internal)\s+[\w<>\[\],?\s]*\w+\s*\([^)]*\)`),
	},
	".rb": {
		regexp.MustCompile(`^\s*(class|module)\s+\w+`),
		regexp.MustCompile(`^\s*def\s+\w+`),
	},
	".php": {
		regexp.MustCompile(`^\s*(abstract\s+|final\s+)?(class|interface|trait)\s+\w+`),
		regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?function\s+\w+`),
	},
	".c":   cPatterns,
	".h":   cPatterns,
	".cc":  cPatterns,
	".cpp": cPatterns,
	".hpp": cPatterns,
}

var jsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\*?\s+\w+`),
	regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+\w+`),
	regexp.MustCompile(`^\s*(export\s+)?(interface|type|enum)\s+\w+`),
	regexp.MustCompile(`^\s*(export\s+)?const\s+\w+\s*=\s*(async\s+)?(\([^)]*\)|\w+)\s*=>`),
}

var cPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(class|struct|enum|union|namespace)\s+\w+`),
	regexp.MustCompile(`^[A-Za-z_][\w\s\*&:<>,]*\s+\**&?[A-Za-z_][\w:]*\s*\([^;]*\)\s*(const\s*)?\{?\s*$`),
	regexp.MustCompile(`^#(include|define)\b`),
}

// elision replaces each run of dropped lines.
const elision = "    ..."

// compress reduces content to its declaration lines. Files in languages
// without declaration patterns, and files where nothing matched, are
// returned unchanged.
func compress(filePath, content string) string {
	patterns, ok := declarationPatterns[strings.ToLower(path.Ext(filePath))]
	if !ok {
		return content
	}

	lines := strings.Split(content, "\n")
	var kept []string
	dropped := false
	matched := 0
	for _, line := range lines {
		if matchesAny(patterns, line) {
			if dropped && len(kept) > 0 {
				kept = append(kept, elision)
			}
			kept = append(kept, strings.TrimRight(line, " \t\r"))
			dropped = false
			matched++
			continue
		}
		if strings.TrimSpace(line) != "" {
			dropped = true
		}
	}
	if matched == 0 {
		return content
	}
	if dropped {
		kept = append(kept, elision)
	}
	return strings.Join(kept, "\n") + "\n"
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
