package app

import (
	"github.com/vk/taskpipe/internal/registry"
	"github.com/vk/taskpipe/modules/envvars"
	"github.com/vk/taskpipe/modules/httpfetch"
	"github.com/vk/taskpipe/modules/printer"
	"github.com/vk/taskpipe/modules/socketio"
)

// coreModules is the default set of task kinds available to pipelines.
var coreModules = []registry.Module{
	&printer.Module{},
	&envvars.Module{},
	&httpfetch.Module{},
	&socketio.Module{},
}
