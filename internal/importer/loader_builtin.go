package importer

import (
	"fmt"

	"github.com/zephyr-lang/zephyr/internal/object"
)

// BuiltinLocator resolves name against the Init registry before any
// filesystem search runs (spec §4.13 "locators run built-ins first").
func BuiltinLocator(name string) (*Spec, bool) {
	if _, ok := Lookup(name); ok {
		return &Spec{Name: name, Kind: Builtin, Path: name}, true
	}
	return nil, false
}

// BuiltinLoader materializes a Module from a registered Init table:
// types, functions and constants all land in Exports under their own
// name, then Init (if set) runs with the Module already populated.
func BuiltinLoader(spec *Spec) (*Module, error) {
	init, ok := Lookup(spec.Path)
	if !ok {
		return nil, fmt.Errorf("no built-in module registered as %q", spec.Path)
	}

	m := newModule(spec.Name)
	for _, t := range init.Types {
		m.Exports.Set(t.Name, t, object.AttrPublic)
	}
	for name, fn := range init.Functions {
		m.Exports.Set(name, fn, object.AttrPublic)
	}
	for name, c := range init.Constants {
		m.Exports.Set(name, c, object.AttrPublic)
	}

	if init.Init != nil {
		if err := init.Init(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}
