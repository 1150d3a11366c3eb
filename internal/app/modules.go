package app

import (
	"github.com/specialistvlad/modfactory/internal/registry"
	"github.com/specialistvlad/modfactory/modules/env_vars"
	"github.com/specialistvlad/modfactory/modules/http_client"
	"github.com/specialistvlad/modfactory/modules/print"
	"github.com/specialistvlad/modfactory/modules/sample"
)

// coreModules is the definitive list of all modules that are compiled into
// the modfactory binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&http_client.Module{},
	&print.Module{},
	&sample.Module{},
}
