//go:build (linux || darwin) && cgo

package importer

import (
	"fmt"
	"plugin"
)

// nativeInitSymbol is the exported symbol a shared library's loader
// looks up and invokes (spec §4.13 "dynamically loads a shared library
// and invokes its init symbol").
const nativeInitSymbol = "ZephyrModuleInit"

// NativeLoader loads spec.Path as a Go plugin and calls its
// ZephyrModuleInit() *importer.Init symbol. Reproducing the original's
// exact native ABI (struct layout, calling convention) is explicitly out
// of scope — only the locate-then-invoke-init shape is carried forward.
func NativeLoader(spec *Spec) (*Module, error) {
	if ok, err := CheckABI(spec.ABIConstraint, HostABI); err != nil {
		return nil, fmt.Errorf("invalid ABI constraint %q: %w", spec.ABIConstraint, err)
	} else if !ok {
		return nil, fmt.Errorf("%s requires ABI %s, host is %s", spec.Path, spec.ABIConstraint, HostABI)
	}

	p, err := plugin.Open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("loading native module %s: %w", spec.Path, err)
	}
	sym, err := p.Lookup(nativeInitSymbol)
	if err != nil {
		return nil, fmt.Errorf("native module %s missing %s: %w", spec.Path, nativeInitSymbol, err)
	}
	initFn, ok := sym.(func() *Init)
	if !ok {
		return nil, fmt.Errorf("native module %s: %s has the wrong signature", spec.Path, nativeInitSymbol)
	}

	init := initFn()
	Register(init)
	return BuiltinLoader(&Spec{Name: spec.Name, Kind: Builtin, Path: init.Name})
}
