package task

import (
	"fmt"
	"strings"
)

// Named transforms usable from declarative pipeline files. Programmatic
// callers can attach any function; these cover the common reshaping needs
// between a producer's structured payload and a consumer's flat input.
var namedTransforms = map[string]func(any) (any, error){
	"stringify": transformStringify,
	"join":      transformJoin,
	"first":     transformFirst,
	"length":    transformLength,
}

// TransformByName looks up one of the built-in named transforms.
func TransformByName(name string) (func(any) (any, error), error) {
	fn, ok := namedTransforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return fn, nil
}

// TransformNames returns the names of the built-in transforms, unordered.
func TransformNames() []string {
	names := make([]string, 0, len(namedTransforms))
	for name := range namedTransforms {
		names = append(names, name)
	}
	return names
}

func transformStringify(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}

func transformJoin(v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("join expects a list, got %T", v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok {
			parts[i] = s
			continue
		}
		parts[i] = fmt.Sprintf("%v", item)
	}
	return strings.Join(parts, "\n"), nil
}

func transformFirst(v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("first expects a list, got %T", v)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("first expects a non-empty list")
	}
	return items[0], nil
}

func transformLength(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return len(t), nil
	case []any:
		return len(t), nil
	case map[string]any:
		return len(t), nil
	default:
		return nil, fmt.Errorf("length expects a string, list or map, got %T", v)
	}
}
