package app

import (
	"github.com/vk/jobgraph/internal/registry"
	"github.com/vk/jobgraph/modules/arith"
	"github.com/vk/jobgraph/modules/text"
)

// coreModules is the definitive list of all modules that are compiled into
// the jobgraph binary.
var coreModules = []registry.Module{
	&arith.Module{},
	&text.Module{},
}
