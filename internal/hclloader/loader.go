// Package hclloader loads declarative pipeline files written in HCL and
// translates them into the format-agnostic config model. Task references in
// argument strings survive loading as ${path} placeholders, which the engine
// substitutes at dispatch time against the run's shared context.
package hclloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/taskpipe/internal/config"
	"github.com/vk/taskpipe/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the given path (a single .hcl file or a directory of them)
// and returns the merged pipeline model. Exactly one pipeline block must be
// present across all files.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findHCLFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found at %s", path)
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	parser := hclparse.NewParser()
	var pipelines []*pipelineBlock

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}
		pipelines = append(pipelines, root.Pipelines...)
	}

	if len(pipelines) == 0 {
		return nil, fmt.Errorf("no pipeline block found at %s", path)
	}
	if len(pipelines) > 1 {
		return nil, fmt.Errorf("found %d pipeline blocks at %s, expected exactly one", len(pipelines), path)
	}

	model, err := translate(pipelines[0])
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Pipeline model loaded.", "pipeline", model.Pipeline.Name, "tasks", len(model.Pipeline.Tasks))
	return model, nil
}

// translate converts the HCL-specific blocks into the agnostic model.
func translate(p *pipelineBlock) (*config.Model, error) {
	pipeline := &config.Pipeline{Name: p.Name}

	for _, tb := range p.Tasks {
		spec := &config.TaskSpec{
			Name:      tb.Name,
			Kind:      tb.Kind,
			Arguments: map[string]any{},
		}

		for _, ib := range tb.Inputs {
			in := &config.InputSpec{
				Name:      ib.Name,
				Source:    ib.Source,
				Kind:      ib.Kind,
				Transform: ib.Transform,
			}
			if ib.Default != nil {
				val, diags := ib.Default.Value(nil)
				if diags.HasErrors() {
					return nil, fmt.Errorf("task %q input %q: default must be a literal: %w", tb.Name, ib.Name, diags)
				}
				if !val.IsNull() {
					def, err := ctyToGo(val)
					if err != nil {
						return nil, fmt.Errorf("task %q input %q: %w", tb.Name, ib.Name, err)
					}
					in.Default = def
				}
			}
			spec.Inputs = append(spec.Inputs, in)
		}

		if tb.Arguments != nil {
			args, err := decodeArguments(tb.Arguments.Body)
			if err != nil {
				return nil, fmt.Errorf("task %q: %w", tb.Name, err)
			}
			spec.Arguments = args
		}
		pipeline.Tasks = append(pipeline.Tasks, spec)
	}

	return &config.Model{Pipeline: pipeline}, nil
}

// decodeArguments evaluates every attribute of an arguments block. Variable
// references are not resolved here; they are re-inserted into the resulting
// strings as ${path} placeholders for runtime substitution.
func decodeArguments(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid arguments block: %w", diags)
	}

	// Deterministic processing order keeps error reporting stable.
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make(map[string]any, len(attrs))
	for _, name := range names {
		val, err := evalWithPlaceholders(attrs[name].Expr)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		args[name] = goVal
	}
	return args, nil
}

// findHCLFiles resolves a path into the sorted list of .hcl files beneath it.
func findHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pipeline path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
