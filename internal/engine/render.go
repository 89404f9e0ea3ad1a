package engine

import (
	"embed"
	"fmt"
	"html"
	"path"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var promptTemplates = template.Must(
	template.New("prompt").
		Funcs(template.FuncMap{"attr": html.EscapeString}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// promptData is the input of every prompt template.
type promptData struct {
	ProjectName string
	Tree        string
	Files       []promptFile
}

type promptFile struct {
	Index   int
	Path    string
	Content string
	Lang    string
	Fence   string
}

// languages maps extensions to markdown fence language hints.
var languages = map[string]string{
	".go": "go", ".py": "python", ".js": "javascript", ".jsx": "jsx",
	".ts": "typescript", ".tsx": "tsx", ".mjs": "javascript",
	".java": "java", ".rs": "rust", ".cs": "csharp", ".rb": "ruby",
	".php": "php", ".c": "c", ".h": "c", ".cc": "cpp", ".cpp": "cpp",
	".hpp": "cpp", ".kt": "kotlin", ".swift": "swift", ".scala": "scala",
	".sh": "bash", ".sql": "sql", ".html": "html", ".css": "css",
	".json": "json", ".yaml": "yaml", ".yml": "yaml", ".toml": "toml",
	".md": "markdown", ".xml": "xml", ".proto": "protobuf",
}

func render(projectName string, opts Options, files []sourceFile) (string, error) {
	data := promptData{ProjectName: projectName}
	paths := make([]string, 0, len(files))
	for i, f := range files {
		paths = append(paths, f.Path)
		data.Files = append(data.Files, promptFile{
			Index:   i + 1,
			Path:    f.Path,
			Content: strings.TrimRight(f.Content, "\n"),
			Lang:    languages[strings.ToLower(path.Ext(f.Path))],
			Fence:   fenceFor(f.Content),
		})
	}
	data.Tree = renderTree(projectName, paths, opts.TreeDepth)

	var sb strings.Builder
	if err := promptTemplates.ExecuteTemplate(&sb, string(opts.Format)+".tmpl", data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", opts.Format, err)
	}
	return sb.String(), nil
}

// fenceFor returns a backtick fence longer than any backtick run in content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
