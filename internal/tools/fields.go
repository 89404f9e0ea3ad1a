package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/mcp-go/mcp"
)

// fieldKind is the value type of a tool argument.
type fieldKind int

const (
	// kindPath is a filesystem location. It is exposed as a plain string.
	kindPath fieldKind = iota
	kindString
	kindStringList
	kindBool
	kindInt
)

// field declares one tool argument. The same declaration drives the
// published input schema and argument validation, so the two cannot drift.
type field struct {
	name        string
	kind        fieldKind
	description string
	required    bool
	// def is applied when the argument is absent or null. Its Go type
	// matches kind (string, bool, int); nil means no default.
	def      any
	enum     []string
	min      *int // kindInt only
	minItems int  // kindStringList only
	glob     bool // kindStringList only: every item must be a valid glob
}

func intPtr(v int) *int { return &v }

// toolOption renders the field as an mcp-go schema property.
func (f field) toolOption() mcp.ToolOption {
	opts := []mcp.PropertyOption{mcp.Description(f.description)}
	if f.required {
		opts = append(opts, mcp.Required())
	}

	switch f.kind {
	case kindStringList:
		opts = append(opts, mcp.WithStringItems())
		if f.minItems > 0 {
			opts = append(opts, mcp.MinItems(f.minItems))
		}
		return mcp.WithArray(f.name, opts...)
	case kindBool:
		if v, ok := f.def.(bool); ok {
			opts = append(opts, mcp.DefaultBool(v))
		}
		return mcp.WithBoolean(f.name, opts...)
	case kindInt:
		opts = append(opts, integerType())
		if v, ok := f.def.(int); ok {
			opts = append(opts, mcp.DefaultNumber(float64(v)))
		}
		if f.min != nil {
			opts = append(opts, mcp.Min(float64(*f.min)))
		}
		return mcp.WithNumber(f.name, opts...)
	case kindString:
		if len(f.enum) > 0 {
			opts = append(opts, mcp.Enum(f.enum...))
		}
		if v, ok := f.def.(string); ok {
			opts = append(opts, mcp.DefaultString(v))
		}
		return mcp.WithString(f.name, opts...)
	default:
		// Paths carry no format marker: clients validate with plain JSON Schema.
		return mcp.WithString(f.name, opts...)
	}
}

// integerType narrows mcp-go's "number" property to "integer".
func integerType() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

// parse checks one raw argument against the field and returns the typed
// value (string, []string, bool or int), applying the default when the
// argument is absent. A nil value with a nil error means "absent, no default".
func (f field) parse(raw any, present bool) (any, error) {
	if !present || raw == nil {
		if f.required {
			return nil, fmt.Errorf("field required")
		}
		return f.def, nil
	}

	switch f.kind {
	case kindPath:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %s", jsonType(raw))
		}
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("must not be empty")
		}
		return s, nil

	case kindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %s", jsonType(raw))
		}
		if len(f.enum) > 0 && !contains(f.enum, s) {
			return nil, fmt.Errorf("must be one of %s, got %q", strings.Join(f.enum, ", "), s)
		}
		return s, nil

	case kindStringList:
		items, err := parseStringList(raw)
		if err != nil {
			return nil, err
		}
		if len(items) < f.minItems {
			return nil, fmt.Errorf("must contain at least %d item(s)", f.minItems)
		}
		if f.glob {
			for i, p := range items {
				if !doublestar.ValidatePattern(p) {
					return nil, fmt.Errorf("item %d is not a valid glob pattern: %q", i, p)
				}
			}
		}
		return items, nil

	case kindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("must be a boolean, got %s", jsonType(raw))
		}
		return b, nil

	case kindInt:
		n, err := parseInt(raw)
		if err != nil {
			return nil, err
		}
		if f.min != nil && n < *f.min {
			return nil, fmt.Errorf("must be greater than or equal to %d, got %d", *f.min, n)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported field kind %d", f.kind)
}

// parseStringList accepts a JSON array of strings, matching the published
// array schema. Entries are trimmed and blanks dropped.
func parseStringList(raw any) ([]string, error) {
	var items []string
	switch v := raw.(type) {
	case []string:
		items = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d must be a string, got %s", i, jsonType(item))
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("must be an array of strings, got %s", jsonType(raw))
	}

	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// parseInt accepts JSON numbers (float64 after decoding) with no
// fractional part, plus Go integer types for in-process callers.
func parseInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, fmt.Errorf("must be an integer within range, got %d", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("must be an integer, got %v", v)
		}
		// float64(math.MaxInt) rounds up to 2^63, which itself overflows.
		if v >= float64(math.MaxInt) || v < float64(math.MinInt) {
			return 0, fmt.Errorf("must be an integer within range, got %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %s", v)
		}
		if n > math.MaxInt || n < math.MinInt {
			return 0, fmt.Errorf("must be an integer within range, got %s", v)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("must be an integer, got %s", jsonType(raw))
}

// jsonType names the JSON type of a decoded value for error messages.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
