package tools

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Test helpers ---

// fakeEngine records how it was built and returns canned results.
type fakeEngine struct {
	opts     engine.Options
	text     string
	analysis *engine.Analysis
	err      error
	panicMsg string
	topN     int
}

func (f *fakeEngine) Generate(ctx context.Context) (string, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.text, f.err
}

func (f *fakeEngine) Analyse(ctx context.Context, topN int) (*engine.Analysis, error) {
	f.topN = topN
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

// newFakeDispatcher returns a dispatcher whose factory hands out template
// copies and records every engine it built.
func newFakeDispatcher(template fakeEngine) (*Dispatcher, *[]*fakeEngine) {
	var built []*fakeEngine
	factory := func(opts engine.Options) Engine {
		e := template
		e.opts = opts
		built = append(built, &e)
		return &e
	}
	return NewDispatcher(factory, nil), &built
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func mustFailure(t *testing.T, err error, kind FailureKind) *Failure {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %T (%v)", err, err)
	}
	if f.Kind != kind {
		t.Fatalf("failure kind = %s, want %s (message: %s)", f.Kind, kind, f.Message)
	}
	if f.Message == "" {
		t.Fatal("failure message must not be empty")
	}
	return f
}

// --- Schema Registry ---

func TestListTools_StableAndOrdered(t *testing.T) {
	first := ListTools()
	second := ListTools()

	if !reflect.DeepEqual(first, second) {
		t.Error("ListTools() should return identical results on repeated calls")
	}

	var names []string
	for _, tool := range first {
		names = append(names, tool.Name)
	}
	want := []string{ToolGetContext, ToolAnalyseProject, ToolGetFiles}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("tool names = %v, want %v", names, want)
	}
}

func TestListTools_SchemaShapes(t *testing.T) {
	tools := map[string]mcp.Tool{}
	for _, tool := range ListTools() {
		tools[tool.Name] = tool
		if tool.Description == "" {
			t.Errorf("%s: missing description", tool.Name)
		}
		if tool.InputSchema.Type != "object" {
			t.Errorf("%s: schema type = %q, want object", tool.Name, tool.InputSchema.Type)
		}
		if tool.Annotations.ReadOnlyHint == nil || !*tool.Annotations.ReadOnlyHint {
			t.Errorf("%s: should be annotated read-only", tool.Name)
		}

		root, ok := tool.InputSchema.Properties["root_path"].(map[string]any)
		if !ok {
			t.Fatalf("%s: missing root_path property", tool.Name)
		}
		if root["type"] != "string" {
			t.Errorf("%s: root_path type = %v, want string", tool.Name, root["type"])
		}
		if _, hasFormat := root["format"]; hasFormat {
			t.Errorf("%s: root_path must not carry a format marker", tool.Name)
		}
	}

	ctxTool := tools[ToolGetContext]
	if !reflect.DeepEqual(ctxTool.InputSchema.Required, []string{"root_path"}) {
		t.Errorf("get-context required = %v", ctxTool.InputSchema.Required)
	}
	depth := ctxTool.InputSchema.Properties["tree_depth"].(map[string]any)
	if depth["type"] != "integer" || depth["default"] != float64(5) || depth["minimum"] != float64(0) {
		t.Errorf("tree_depth schema = %v", depth)
	}
	format := ctxTool.InputSchema.Properties["output_format"].(map[string]any)
	if !reflect.DeepEqual(format["enum"], []string{"default", "markdown", "cxml"}) {
		t.Errorf("output_format enum = %v", format["enum"])
	}
	if format["default"] != "default" {
		t.Errorf("output_format default = %v", format["default"])
	}
	gitignore := ctxTool.InputSchema.Properties["respect_gitignore"].(map[string]any)
	if gitignore["type"] != "boolean" || gitignore["default"] != true {
		t.Errorf("respect_gitignore schema = %v", gitignore)
	}

	filesTool := tools[ToolGetFiles]
	if !reflect.DeepEqual(filesTool.InputSchema.Required, []string{"root_path", "paths"}) {
		t.Errorf("get-files required = %v", filesTool.InputSchema.Required)
	}
	paths := filesTool.InputSchema.Properties["paths"].(map[string]any)
	if paths["type"] != "array" || paths["minItems"] != 1 {
		t.Errorf("paths schema = %v", paths)
	}

	topN := tools[ToolAnalyseProject].InputSchema.Properties["top_n"].(map[string]any)
	if topN["default"] != float64(10) || topN["minimum"] != float64(1) {
		t.Errorf("top_n schema = %v", topN)
	}
}

// Every declared field must appear in the schema, and nothing else.
func TestListTools_MatchesFieldTables(t *testing.T) {
	for _, spec := range toolSpecs {
		def := definitionOf(spec.name)
		if len(def.InputSchema.Properties) != len(spec.fields) {
			t.Errorf("%s: %d schema properties, %d fields", spec.name, len(def.InputSchema.Properties), len(spec.fields))
		}
		for _, f := range spec.fields {
			if _, ok := def.InputSchema.Properties[f.name]; !ok {
				t.Errorf("%s: field %s missing from schema", spec.name, f.name)
			}
		}
	}
}

// --- Request Validator ---

func TestValidate_AppliesDefaults(t *testing.T) {
	req, err := Validate(ToolGetContext, map[string]any{"root_path": "/proj"})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := ContextRequest{
		RootPath:         "/proj",
		RespectGitignore: true,
		Compress:         false,
		OutputFormat:     engine.FormatDefault,
		TreeDepth:        5,
	}
	if !reflect.DeepEqual(req, want) {
		t.Errorf("ContextRequest = %+v, want %+v", req, want)
	}

	req, err = Validate(ToolAnalyseProject, map[string]any{"root_path": "/proj", "include_patterns": nil})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := req.(AnalyseRequest); got.TopN != 10 || !got.RespectGitignore || got.IncludePatterns != nil {
		t.Errorf("AnalyseRequest = %+v", got)
	}

	req, err = Validate(ToolGetFiles, map[string]any{"root_path": "/proj", "paths": []any{"a.go"}})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := req.(GetFilesRequest); got.OutputFormat != engine.FormatDefault || !reflect.DeepEqual(got.Paths, []string{"a.go"}) {
		t.Errorf("GetFilesRequest = %+v", got)
	}
}

func TestValidate_AllFields(t *testing.T) {
	req, err := Validate(ToolGetContext, map[string]any{
		"root_path":         "/proj",
		"include_patterns":  []any{"*.go", "*.md"},
		"exclude_patterns":  []any{" vendor/** ", "", "*_test.go"},
		"respect_gitignore": false,
		"compress":          true,
		"output_format":     "cxml",
		"tree_depth":        float64(0),
		"unknown_extra":     "ignored",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := ContextRequest{
		RootPath:         "/proj",
		IncludePatterns:  []string{"*.go", "*.md"},
		ExcludePatterns:  []string{"vendor/**", "*_test.go"},
		RespectGitignore: false,
		Compress:         true,
		OutputFormat:     engine.FormatCXML,
		TreeDepth:        0,
	}
	if !reflect.DeepEqual(req, want) {
		t.Errorf("ContextRequest = %+v, want %+v", req, want)
	}
}

func TestValidate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		want []string
	}{
		{"missing root", ToolGetContext, map[string]any{}, []string{"root_path: field required"}},
		{"empty root", ToolAnalyseProject, map[string]any{"root_path": "  "}, []string{"root_path: must not be empty"}},
		{"missing paths", ToolGetFiles, map[string]any{"root_path": "/p"}, []string{"paths: field required"}},
		{"empty paths", ToolGetFiles, map[string]any{"root_path": "/p", "paths": []any{}}, []string{"paths: must contain at least 1 item(s)"}},
		{"non-string path", ToolGetFiles, map[string]any{"root_path": "/p", "paths": []any{"a", 3.0}}, []string{"paths: item 1 must be a string, got number"}},
		{"root wrong type", ToolGetContext, map[string]any{"root_path": 42.0}, []string{"root_path: must be a string, got number"}},
		{"bool wrong type", ToolGetContext, map[string]any{"root_path": "/p", "compress": "yes"}, []string{"compress: must be a boolean, got string"}},
		{"negative depth", ToolGetContext, map[string]any{"root_path": "/p", "tree_depth": -1.0}, []string{"tree_depth: must be greater than or equal to 0, got -1"}},
		{"fractional depth", ToolGetContext, map[string]any{"root_path": "/p", "tree_depth": 2.5}, []string{"tree_depth: must be an integer, got 2.5"}},
		{"zero top_n", ToolAnalyseProject, map[string]any{"root_path": "/p", "top_n": 0.0}, []string{"top_n: must be greater than or equal to 1, got 0"}},
		{"huge depth", ToolGetContext, map[string]any{"root_path": "/p", "tree_depth": 1e19}, []string{"tree_depth: must be an integer within range, got 1e+19"}},
		{"patterns as string", ToolGetContext, map[string]any{"root_path": "/p", "include_patterns": "*.{go,py}"}, []string{"include_patterns: must be an array of strings, got string"}},
		{"malformed glob", ToolAnalyseProject, map[string]any{"root_path": "/p", "exclude_patterns": []any{"*.go", "*.{go"}}, []string{`exclude_patterns: item 1 is not a valid glob pattern: "*.{go"`}},
		{"patterns wrong type", ToolAnalyseProject, map[string]any{"root_path": "/p", "include_patterns": true}, []string{"include_patterns: must be an array of strings, got boolean"}},
		{
			"several violations",
			ToolGetContext,
			map[string]any{"compress": 1.0, "output_format": "html"},
			[]string{"root_path: field required", "compress: must be a boolean", `output_format: must be one of default, markdown, cxml, got "html"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.tool, tt.args)
			f := mustFailure(t, err, InvalidArguments)
			if f.Code() != mcp.INVALID_PARAMS {
				t.Errorf("code = %d, want %d", f.Code(), mcp.INVALID_PARAMS)
			}
			if f.Tool != tt.tool {
				t.Errorf("tool = %q, want %q", f.Tool, tt.tool)
			}
			for _, w := range tt.want {
				if !strings.Contains(f.Message, w) {
					t.Errorf("message %q missing %q", f.Message, w)
				}
			}
		})
	}
}

func TestValidate_BraceGlobKeptWhole(t *testing.T) {
	req, err := Validate(ToolGetContext, map[string]any{
		"root_path":        "/p",
		"include_patterns": []any{"*.{go,py}"},
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := req.(ContextRequest).IncludePatterns; !reflect.DeepEqual(got, []string{"*.{go,py}"}) {
		t.Errorf("IncludePatterns = %v, want [*.{go,py}]", got)
	}
}

func TestValidate_OutputFormatRejectedForEveryTool(t *testing.T) {
	for _, tool := range []string{ToolGetContext, ToolGetFiles} {
		_, err := Validate(tool, map[string]any{
			"root_path":     "/p",
			"paths":         []any{"a.go"},
			"output_format": "yaml",
		})
		f := mustFailure(t, err, InvalidArguments)
		if !strings.Contains(f.Message, "output_format") {
			t.Errorf("%s: message %q should name output_format", tool, f.Message)
		}
	}
}

func TestValidate_UnknownTool(t *testing.T) {
	_, err := Validate("ctp-delete-everything", map[string]any{"root_path": "/"})
	f := mustFailure(t, err, UnknownTool)
	if f.Code() != mcp.INVALID_PARAMS {
		t.Errorf("code = %d, want INVALID_PARAMS", f.Code())
	}
	if !strings.Contains(f.Message, "ctp-delete-everything") {
		t.Errorf("message %q should name the tool", f.Message)
	}
}

// --- Dispatcher ---

func TestDispatcher_UnknownToolNeverBuildsEngine(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{text: "x"})

	_, err := d.Call(context.Background(), "ctp-delete-everything", map[string]any{"root_path": "/"})
	f := mustFailure(t, err, UnknownTool)
	if f.Message != "Unknown tool: ctp-delete-everything" {
		t.Errorf("message = %q", f.Message)
	}
	if len(*built) != 0 {
		t.Errorf("engine built %d times, want 0", len(*built))
	}
}

func TestDispatcher_InvalidArgumentsNeverBuildEngine(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{text: "x"})

	_, err := d.Call(context.Background(), ToolGetFiles, map[string]any{"root_path": "/p"})
	mustFailure(t, err, InvalidArguments)
	if len(*built) != 0 {
		t.Errorf("engine built %d times, want 0", len(*built))
	}
}

func TestDispatcher_EngineErrorKeepsMessage(t *testing.T) {
	ioErr := &fs.PathError{Op: "open", Path: "/p/secret", Err: fs.ErrPermission}
	d, _ := newFakeDispatcher(fakeEngine{err: ioErr})

	for _, tool := range []string{ToolGetContext, ToolAnalyseProject} {
		_, err := d.Call(context.Background(), tool, map[string]any{"root_path": "/p"})
		f := mustFailure(t, err, EngineFailure)
		if f.Code() != mcp.INTERNAL_ERROR {
			t.Errorf("%s: code = %d, want INTERNAL_ERROR", tool, f.Code())
		}
		if f.Message != ioErr.Error() {
			t.Errorf("%s: message = %q, want %q", tool, f.Message, ioErr.Error())
		}
		if !errors.Is(err, fs.ErrPermission) {
			t.Errorf("%s: failure should unwrap to the engine error", tool)
		}
	}
}

func TestDispatcher_PanicBecomesUnexpectedFailure(t *testing.T) {
	d, _ := newFakeDispatcher(fakeEngine{panicMsg: "boom"})

	_, err := d.Call(context.Background(), ToolGetContext, map[string]any{"root_path": "/p"})
	f := mustFailure(t, err, UnexpectedFailure)
	if f.Code() != mcp.INTERNAL_ERROR {
		t.Errorf("code = %d, want INTERNAL_ERROR", f.Code())
	}
	if !strings.Contains(f.Message, "boom") {
		t.Errorf("message %q should carry the panic value", f.Message)
	}
}

func TestDispatcher_GetContextPassesOptions(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{text: "PROMPT"})

	text, err := d.Call(context.Background(), ToolGetContext, map[string]any{
		"root_path":        "/proj",
		"include_patterns": []any{"*.go"},
		"compress":         true,
		"output_format":    "markdown",
		"tree_depth":       2.0,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if text != "PROMPT" {
		t.Errorf("text = %q, want engine output verbatim", text)
	}
	if len(*built) != 1 {
		t.Fatalf("engine built %d times, want 1", len(*built))
	}
	opts := (*built)[0].opts
	if opts.Root != "/proj" || !opts.Compress || opts.Format != engine.FormatMarkdown || opts.TreeDepth != 2 ||
		!opts.RespectGitignore || !reflect.DeepEqual(opts.IncludePatterns, []string{"*.go"}) {
		t.Errorf("engine options = %+v", opts)
	}
}

func TestDispatcher_BraceGlobReachesEngine(t *testing.T) {
	root := t.TempDir()
	for name, body := range map[string]string{"a.go": "package a\n", "b.py": "x = 1\n", "c.md": "# c\n"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	d := NewDispatcher(NewEngineFactory(engine.Options{}), nil)

	text, err := d.Call(context.Background(), ToolGetContext, map[string]any{
		"root_path":        root,
		"include_patterns": []any{"*.{go,py}"},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !strings.Contains(text, "File: a.go") || !strings.Contains(text, "File: b.py") {
		t.Errorf("brace glob should select a.go and b.py:\n%s", text)
	}
	if strings.Contains(text, "c.md") {
		t.Errorf("c.md should be filtered out:\n%s", text)
	}
}

func TestDispatcher_FreshEnginePerCall(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{text: "x"})
	for i := 0; i < 3; i++ {
		if _, err := d.Call(context.Background(), ToolGetContext, map[string]any{"root_path": "/p"}); err != nil {
			t.Fatalf("Call %d: %v", i, err)
		}
	}
	if len(*built) != 3 {
		t.Errorf("engine built %d times, want 3", len(*built))
	}
	if (*built)[0] == (*built)[1] {
		t.Error("engines must not be shared between calls")
	}
}

func TestDispatcher_GetFilesResolvesAgainstRoot(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{text: "FILES"})
	root := t.TempDir()

	text, err := d.Call(context.Background(), ToolGetFiles, map[string]any{
		"root_path":     root,
		"paths":         []any{"src/main.py", "README.md"},
		"output_format": "cxml",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if text != "FILES" {
		t.Errorf("text = %q", text)
	}

	opts := (*built)[0].opts
	want := []string{filepath.Join(root, "src", "main.py"), filepath.Join(root, "README.md")}
	if !reflect.DeepEqual(opts.ExplicitFiles, want) {
		t.Errorf("ExplicitFiles = %v, want %v", opts.ExplicitFiles, want)
	}
	if opts.Format != engine.FormatCXML {
		t.Errorf("Format = %q, want cxml", opts.Format)
	}
}

func TestDispatcher_AnalyseFormatsReport(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{analysis: &engine.Analysis{
		Overall: engine.Overall{FileCount: 3, TotalLines: 1200, TotalTokens: 45000},
	}})

	text, err := d.Call(context.Background(), ToolAnalyseProject, map[string]any{"root_path": "/p", "top_n": 3.0})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if (*built)[0].topN != 3 {
		t.Errorf("topN = %d, want 3", (*built)[0].topN)
	}
	if !strings.Contains(text, "Total Tokens: 45,000") {
		t.Errorf("report missing totals:\n%s", text)
	}
}

// --- MCP handlers ---

func TestHandle_Success(t *testing.T) {
	d, _ := newFakeDispatcher(fakeEngine{text: "PROMPT"})
	tool := NewGetContextTool(d)

	result, err := tool.Handle(context.Background(), makeReq(ToolGetContext, map[string]interface{}{"root_path": "/p"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(result))
	}
	if resultText(result) != "PROMPT" {
		t.Errorf("text = %q", resultText(result))
	}
}

func TestHandle_InvalidParamsBecomesToolError(t *testing.T) {
	d, _ := newFakeDispatcher(fakeEngine{text: "x"})
	tool := NewGetFilesTool(d)

	result, err := tool.Handle(context.Background(), makeReq(ToolGetFiles, map[string]interface{}{"root_path": "/p"}))
	if err != nil {
		t.Fatalf("invalid params should not be a protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	if !strings.Contains(resultText(result), "paths: field required") {
		t.Errorf("text = %q", resultText(result))
	}
	if result.Meta == nil || result.Meta.AdditionalFields["code"] != mcp.INVALID_PARAMS {
		t.Errorf("meta = %+v, want code %d", result.Meta, mcp.INVALID_PARAMS)
	}
}

func TestHandle_NonObjectArguments(t *testing.T) {
	d, built := newFakeDispatcher(fakeEngine{text: "x"})
	tool := NewAnalyseProjectTool(d)

	req := mcp.CallToolRequest{}
	req.Params.Name = ToolAnalyseProject
	req.Params.Arguments = []any{"not", "an", "object"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(result), "must be a JSON object") {
		t.Errorf("result = %+v", result)
	}
	if len(*built) != 0 {
		t.Error("engine must not be built for malformed arguments")
	}
}

func TestHandle_InternalErrorReturnedAsError(t *testing.T) {
	d, _ := newFakeDispatcher(fakeEngine{err: errors.New("root path does not exist: /nope")})
	tool := NewGetContextTool(d)

	result, err := tool.Handle(context.Background(), makeReq(ToolGetContext, map[string]interface{}{"root_path": "/nope"}))
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
	f := mustFailure(t, err, EngineFailure)
	if f.Error() != "root path does not exist: /nope" {
		t.Errorf("error = %q", f.Error())
	}
}

func TestToolDefinitionsMatchRegistry(t *testing.T) {
	d, _ := newFakeDispatcher(fakeEngine{})
	defs := []mcp.Tool{
		NewGetContextTool(d).Definition(),
		NewAnalyseProjectTool(d).Definition(),
		NewGetFilesTool(d).Definition(),
	}
	if !reflect.DeepEqual(defs, ListTools()) {
		t.Error("tool Definition() values should equal ListTools()")
	}
}
