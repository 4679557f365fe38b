package hclloader

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a pipeline file.
type fileRoot struct {
	Pipelines []*pipelineBlock `hcl:"pipeline,block"`
}

// pipelineBlock is a `pipeline "<name>" { ... }` block.
type pipelineBlock struct {
	Name  string       `hcl:"name,label"`
	Tasks []*taskBlock `hcl:"task,block"`
}

// taskBlock is a `task "<name>" { ... }` block.
type taskBlock struct {
	Name      string        `hcl:"name,label"`
	Kind      string        `hcl:"kind"`
	Inputs    []*inputBlock `hcl:"input,block"`
	Arguments *argsBlock    `hcl:"arguments,block"`
}

// inputBlock is an `input "<param>" { ... }` block declaring one dependency.
type inputBlock struct {
	Name      string         `hcl:"name,label"`
	Source    string         `hcl:"source"`
	Kind      string         `hcl:"kind,optional"`
	Default   hcl.Expression `hcl:"default,optional"`
	Transform string         `hcl:"transform,optional"`
}

// argsBlock captures the free-form attributes of an `arguments` block.
type argsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
