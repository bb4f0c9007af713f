package importer

import "github.com/zephyr-lang/zephyr/internal/object"

// Init is a built-in module's bulk-entries table: the statically
// registered description a built-in loader links against instead of
// compiling source (spec §4.13 "built-in (links a statically-registered
// ModuleInit table)"), supplemented from reading argon/vm/importer/import.cpp
// where a module's types/functions/constants register together with
// optional init/fini hooks run at load and process-exit time.
type Init struct {
	Name      string
	Types     []*object.TypeInfo
	Functions map[string]object.Object
	Constants map[string]object.Object

	// Init runs once, after Types/Functions/Constants have been copied
	// into the Module's Exports namespace, and may return an error to
	// fail the load. Fini is stored with the table but nothing in this
	// package calls it, at shutdown or otherwise; neither is required.
	Init func(*Module) error
	Fini func(*Module)
}

var registry = map[string]*Init{}

// Register adds a built-in module's Init table to the process-wide
// registry. Called from package init() functions of built-in modules,
// mirroring how generated-code module tables self-register elsewhere.
func Register(init *Init) {
	registry[init.Name] = init
}

// Lookup returns the registered Init table for name, if any.
func Lookup(name string) (*Init, bool) {
	init, ok := registry[name]
	return init, ok
}
