package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
)

// argKind is the JSON type of a tool argument.
type argKind int

const (
	argString argKind = iota
	argStringList
	argObject
	argInteger
)

func (k argKind) String() string {
	switch k {
	case argString:
		return "string"
	case argStringList:
		return "array of strings"
	case argObject:
		return "object"
	case argInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// argSpec declares one tool argument. The same list drives the published
// JSON schema and argument validation.
type argSpec struct {
	name        string
	kind        argKind
	required    bool
	description string
}

// toolOptions converts argument specs to mcp-go tool options.
func toolOptions(description string, specs []argSpec) []mcp.ToolOption {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	for _, s := range specs {
		propOpts := []mcp.PropertyOption{mcp.Description(s.description)}
		if s.required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch s.kind {
		case argString:
			opts = append(opts, mcp.WithString(s.name, propOpts...))
		case argStringList:
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(s.name, propOpts...))
		case argObject:
			opts = append(opts, mcp.WithObject(s.name, propOpts...))
		case argInteger:
			opts = append(opts, mcp.WithNumber(s.name, propOpts...))
		}
	}
	return opts
}

// validateArgs checks args against specs and returns a ValidationError
// naming every offending field, or nil.
func validateArgs(tool string, specs []argSpec, args map[string]any) error {
	var fields []FieldError

	known := make(map[string]bool, len(specs))
	for _, s := range specs {
		known[s.name] = true

		value, present := args[s.name]
		if !present || value == nil {
			if s.required {
				fields = append(fields, FieldError{Field: s.name, Message: "is required"})
			}
			continue
		}

		fields = append(fields, checkValue(s, value)...)
	}

	var unknown []string
	for name := range args {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fields = append(fields, FieldError{Field: name, Message: "is not a recognized argument"})
	}

	if len(fields) > 0 {
		return &ValidationError{Tool: tool, Fields: fields}
	}
	return nil
}

func checkValue(s argSpec, value any) []FieldError {
	mismatch := []FieldError{{Field: s.name, Message: fmt.Sprintf("must be a %s", s.kind)}}

	switch s.kind {
	case argString:
		str, ok := value.(string)
		if !ok {
			return mismatch
		}
		if s.required && strings.TrimSpace(str) == "" {
			return []FieldError{{Field: s.name, Message: "must not be empty"}}
		}

	case argStringList:
		list, ok := value.([]any)
		if !ok {
			if _, ok := value.([]string); ok {
				return nil
			}
			return mismatch
		}
		var fields []FieldError
		for i, item := range list {
			if str, ok := item.(string); !ok || str == "" {
				fields = append(fields, FieldError{
					Field:   fmt.Sprintf("%s[%d]", s.name, i),
					Message: "must be a non-empty string",
				})
			}
		}
		return fields

	case argObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return mismatch
		}
		var keys []string
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var fields []FieldError
		for _, k := range keys {
			if _, err := hubspot.PropertyValueFrom(obj[k]); err != nil {
				fields = append(fields, FieldError{
					Field:   s.name + "." + k,
					Message: "must be a string, number, boolean or null",
				})
			}
		}
		return fields

	case argInteger:
		_, integral, inRange := toInt32(value)
		if !integral {
			return mismatch
		}
		if !inRange {
			return []FieldError{{Field: s.name, Message: "must fit in a 32-bit integer"}}
		}
	}

	return nil
}

// toInt32 accepts JSON numbers with no fractional part. inRange is false
// when an integral value does not fit in an int32.
func toInt32(value any) (n int32, integral, inRange bool) {
	switch v := value.(type) {
	case int:
		return fromInt64(int64(v))
	case int64:
		return fromInt64(v)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false, false
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, true, false
		}
		return int32(v), true, true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return fromInt64(i)
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false, false
		}
		return 0, true, false
	default:
		return 0, false, false
	}
}

func fromInt64(i int64) (int32, bool, bool) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, true, false
	}
	return int32(i), true, true
}

// Accessors below assume validateArgs has accepted args.

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func stringListArg(args map[string]any, name string) []string {
	switch v := args[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intArg(args map[string]any, name string) int {
	n, _, _ := toInt32(args[name])
	return int(n)
}

func propertiesArg(args map[string]any, name string) (*hubspot.Properties, error) {
	obj, _ := args[name].(map[string]any)
	return hubspot.PropertiesFromMap(obj)
}
