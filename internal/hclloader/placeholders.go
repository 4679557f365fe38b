package hclloader

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// evalWithPlaceholders evaluates an argument expression without resolving
// task references. Each variable reference like other_task.field is bound to
// the literal string "${other_task.field}", so interpolations such as
// "Summarize: ${search.results}" survive loading verbatim and are resolved
// at dispatch time against the shared context.
func evalWithPlaceholders(expr hcl.Expression) (cty.Value, error) {
	vars := expr.Variables()
	if len(vars) == 0 {
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("%w", diags)
		}
		return val, nil
	}

	trees := make(map[string]any, len(vars))
	for _, traversal := range vars {
		path, err := traversalPath(traversal)
		if err != nil {
			return cty.NilVal, err
		}
		if err := insertPlaceholder(trees, path); err != nil {
			return cty.NilVal, err
		}
	}

	variables := make(map[string]cty.Value, len(trees))
	for root, tree := range trees {
		variables[root] = placeholderValue(tree)
	}

	val, diags := expr.Value(&hcl.EvalContext{Variables: variables})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("%w", diags)
	}
	return val, nil
}

// traversalPath flattens a traversal into its dotted segments. Only
// attribute-style references are allowed; numeric indexing has no ${path}
// equivalent inside argument strings.
func traversalPath(traversal hcl.Traversal) ([]string, error) {
	path := []string{traversal.RootName()}
	for _, step := range traversal[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			path = append(path, s.Name)
		case hcl.TraverseIndex:
			if s.Key.Type() == cty.String {
				path = append(path, s.Key.AsString())
				continue
			}
			return nil, fmt.Errorf("reference %s: numeric indexing is not supported in arguments; use attribute references", traversal.RootName())
		default:
			return nil, fmt.Errorf("unsupported reference form on %s", traversal.RootName())
		}
	}
	return path, nil
}

// insertPlaceholder records one reference path in the per-root tree. Leaves
// hold the reassembled ${path} text; interior nodes are nested maps.
func insertPlaceholder(trees map[string]any, path []string) error {
	placeholder := "${" + strings.Join(path, ".") + "}"

	node := trees
	for i, segment := range path {
		last := i == len(path)-1
		existing, ok := node[segment]
		if last {
			if ok {
				if _, isLeaf := existing.(string); !isLeaf {
					return fmt.Errorf("conflicting references to %q", strings.Join(path, "."))
				}
			}
			node[segment] = placeholder
			return nil
		}
		if !ok {
			child := make(map[string]any)
			node[segment] = child
			node = child
			continue
		}
		child, isMap := existing.(map[string]any)
		if !isMap {
			return fmt.Errorf("conflicting references to %q", strings.Join(path[:i+1], "."))
		}
		node = child
	}
	return nil
}

// placeholderValue converts a placeholder tree into a cty value: leaves
// become strings, interior nodes become objects.
func placeholderValue(tree any) cty.Value {
	switch t := tree.(type) {
	case string:
		return cty.StringVal(t)
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))
		for name, child := range t {
			attrs[name] = placeholderValue(child)
		}
		return cty.ObjectVal(attrs)
	default:
		// Trees only ever contain strings and maps.
		return cty.NilVal
	}
}
