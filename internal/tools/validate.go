package tools

import (
	"fmt"
	"strings"
)

// Validate turns raw tool arguments into a typed Request. It only checks
// structure and types; it never touches the filesystem. Failures are
// *Failure values of kind UnknownTool or InvalidArguments. Unknown argument
// keys are ignored.
func Validate(toolName string, args map[string]any) (Request, error) {
	spec, ok := lookupTool(toolName)
	if !ok {
		return nil, unknownTool(toolName)
	}

	parsed := make(values, len(spec.fields))
	var violations []string
	for _, f := range spec.fields {
		raw, present := args[f.name]
		v, err := f.parse(raw, present)
		if err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", f.name, err))
			continue
		}
		parsed[f.name] = v
	}

	if len(violations) > 0 {
		return nil, &Failure{
			Kind:    InvalidArguments,
			Tool:    toolName,
			Message: fmt.Sprintf("invalid arguments for %s: %s", toolName, strings.Join(violations, "; ")),
		}
	}
	return spec.bind(parsed), nil
}
