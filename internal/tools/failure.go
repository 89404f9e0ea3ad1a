package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// FailureKind classifies why a tool call failed.
type FailureKind int

const (
	// UnknownTool: the caller named a tool that is not registered.
	UnknownTool FailureKind = iota + 1
	// InvalidArguments: missing, mistyped or out-of-range arguments.
	InvalidArguments
	// EngineFailure: the prompt engine returned an error.
	EngineFailure
	// UnexpectedFailure: anything else, including recovered panics.
	UnexpectedFailure
)

func (k FailureKind) String() string {
	switch k {
	case UnknownTool:
		return "unknown_tool"
	case InvalidArguments:
		return "invalid_arguments"
	case EngineFailure:
		return "engine_failure"
	case UnexpectedFailure:
		return "unexpected_failure"
	}
	return fmt.Sprintf("failure(%d)", int(k))
}

// Code maps the kind onto the JSON-RPC error code reported to callers:
// caller mistakes are INVALID_PARAMS, everything else INTERNAL_ERROR.
func (k FailureKind) Code() int {
	switch k {
	case UnknownTool, InvalidArguments:
		return mcp.INVALID_PARAMS
	default:
		return mcp.INTERNAL_ERROR
	}
}

// Failure is the single error type returned by Validate and Dispatcher.Call.
type Failure struct {
	Kind    FailureKind
	Tool    string
	Message string
	// Err is the underlying error for engine failures.
	Err error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Code returns the JSON-RPC error code for this failure.
func (f *Failure) Code() int { return f.Kind.Code() }

func unknownTool(name string) *Failure {
	return &Failure{Kind: UnknownTool, Tool: name, Message: "Unknown tool: " + name}
}

func engineFailure(tool string, err error) *Failure {
	return &Failure{Kind: EngineFailure, Tool: tool, Message: err.Error(), Err: err}
}

func unexpectedFailure(tool string, recovered any) *Failure {
	return &Failure{
		Kind:    UnexpectedFailure,
		Tool:    tool,
		Message: fmt.Sprintf("unexpected failure in %s: %v", tool, recovered),
	}
}
