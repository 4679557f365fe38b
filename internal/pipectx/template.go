package pipectx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Substitute replaces every ${path} occurrence in the template with the
// string form of the value at that path. The first unresolvable placeholder
// fails the whole substitution with *SubstitutionError. Text outside
// placeholders is left untouched, so a string without placeholders passes
// through unchanged.
func (c *Context) Substitute(template string) (string, error) {
	start := strings.Index(template, "${")
	if start < 0 {
		return template, nil
	}

	var b strings.Builder
	rest := template
	for {
		i := strings.Index(rest, "${")
		if i < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:i])
		rest = rest[i+2:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return "", &SubstitutionError{
				Placeholder: rest,
				Err:         fmt.Errorf("unterminated placeholder"),
			}
		}
		path := rest[:end]
		rest = rest[end+1:]

		if !validPath(path) {
			return "", &SubstitutionError{
				Placeholder: path,
				Err:         fmt.Errorf("malformed path"),
			}
		}
		value, err := c.GetPath(path)
		if err != nil {
			return "", &SubstitutionError{Placeholder: path, Err: err}
		}
		b.WriteString(stringify(value))
	}
}

// validPath accepts identifier(.identifier)* where an identifier is a
// non-empty run of letters, digits, underscores or hyphens.
func validPath(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return false
		}
		for _, r := range segment {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9':
			case r == '_' || r == '-':
			default:
				return false
			}
		}
	}
	return true
}

// stringify renders a looked-up value for inline substitution. Scalars keep
// their natural formatting; structured values render as JSON so templated
// prompts and URLs stay parseable.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case map[string]any, map[string]string, []any, []string:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
