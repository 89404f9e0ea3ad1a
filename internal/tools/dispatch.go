package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HendryAvila/ctp-mcp/internal/engine"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// Engine is the prompt engine contract the tools depend on.
type Engine interface {
	Generate(ctx context.Context) (string, error)
	Analyse(ctx context.Context, topN int) (*engine.Analysis, error)
}

// EngineFactory builds a fresh Engine for one call.
type EngineFactory func(opts engine.Options) Engine

// NewEngineFactory returns a factory producing engine.Engine instances.
// Settings from base that requests cannot express (file size limit, extra
// ignored directories) are copied into every run.
func NewEngineFactory(base engine.Options) EngineFactory {
	return func(opts engine.Options) Engine {
		opts.MaxFileSize = base.MaxFileSize
		opts.ExtraIgnoreDirs = base.ExtraIgnoreDirs
		return engine.New(opts)
	}
}

// Dispatcher validates tool calls, runs them against a freshly built
// engine and translates every outcome into text or a *Failure.
// It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	newEngine EngineFactory
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger discards logs.
func NewDispatcher(newEngine EngineFactory, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{newEngine: newEngine, logger: logger}
}

// Call runs the named tool with raw arguments. On failure the error is
// always a *Failure: validation problems short-circuit before any engine
// is built, engine errors keep their message unmodified, and panics are
// recovered as UnexpectedFailure.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (text string, err error) {
	callID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			text, err = "", unexpectedFailure(name, r)
		}
		d.logCall(ctx, callID, name, start, err)
	}()

	req, err := Validate(name, args)
	if err != nil {
		return "", err
	}

	switch r := req.(type) {
	case ContextRequest:
		text, err = d.getContext(ctx, r)
	case AnalyseRequest:
		text, err = d.analyseProject(ctx, r)
	case GetFilesRequest:
		text, err = d.getFiles(ctx, r)
	default:
		return "", unknownTool(name)
	}
	if err != nil {
		return "", engineFailure(name, err)
	}
	return text, nil
}

func (d *Dispatcher) logCall(ctx context.Context, callID, tool string, start time.Time, err error) {
	attrs := []any{
		slog.String("call_id", callID),
		slog.String("tool", tool),
		slog.Duration("duration", time.Since(start)),
	}
	if err == nil {
		d.logger.InfoContext(ctx, "tool call completed", attrs...)
		return
	}

	var f *Failure
	if errors.As(err, &f) {
		attrs = append(attrs, slog.String("kind", f.Kind.String()), slog.Int("code", f.Code()))
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	d.logger.WarnContext(ctx, "tool call failed", attrs...)
}

// handle adapts Call to mcp-go's tool handler signature.
//
// mcp-go reports every handler error as INTERNAL_ERROR, so only internal
// failures are returned as errors. Caller mistakes come back as tool error
// results carrying the INVALID_PARAMS code in _meta.
func (d *Dispatcher) handle(ctx context.Context, name string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argumentsOf(req)
	if !ok {
		return failureResult(&Failure{
			Kind:    InvalidArguments,
			Tool:    name,
			Message: fmt.Sprintf("invalid arguments for %s: arguments must be a JSON object", name),
		})
	}

	text, err := d.Call(ctx, name, args)
	if err != nil {
		return failureResult(err)
	}
	return mcp.NewToolResultText(text), nil
}

// argumentsOf returns the call arguments as an object. Missing arguments
// are an empty object.
func argumentsOf(req mcp.CallToolRequest) (map[string]any, bool) {
	switch raw := req.GetRawArguments().(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return raw, true
	case json.RawMessage:
		var args map[string]any
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, false
		}
		if args == nil {
			args = map[string]any{}
		}
		return args, true
	}
	return nil, false
}

func failureResult(err error) (*mcp.CallToolResult, error) {
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{Kind: UnexpectedFailure, Message: err.Error(), Err: err}
	}
	if f.Code() != mcp.INVALID_PARAMS {
		return nil, f
	}

	result := mcp.NewToolResultError(f.Message)
	result.Meta = mcp.NewMetaFromMap(map[string]any{
		"code": f.Code(),
		"kind": f.Kind.String(),
	})
	return result, nil
}
