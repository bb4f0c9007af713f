// Package importer resolves qualified module names to loaded Module
// values (spec §4.13): a cache keyed by name, a chain of locators that
// turn a name into an ImportSpec describing where/how to load it, and
// loaders (built-in, source, native) that turn a spec into a Module.
package importer

import (
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// Module is a loaded import: its exported bindings live in Exports, a
// plain value.Namespace so module attribute lookup reuses the same
// Get/Set/Each machinery every other namespaced object already has.
type Module struct {
	Hdr object.Header
	gch gc.GCHead

	Name    string
	Exports *value.Namespace
}

func (m *Module) Header() *object.Header { return &m.Hdr }
func (m *Module) GCHead() *gc.GCHead     { return &m.gch }

func newModule(name string) *Module {
	m := &Module{Name: name, Exports: value.NewNamespace()}
	m.Hdr.Init(ModuleType, false)
	return m
}

var ModuleType = &object.TypeInfo{
	Name:  "Module",
	Flags: object.FlagStruct | object.FlagGC,
	Repr: func(o object.Object) string {
		return "<module '" + o.(*Module).Name + "'>"
	},
}

// Kind distinguishes how a located module gets materialized (spec §4.13
// "built-in ... source ... native").
type Kind int

const (
	Builtin Kind = iota
	Source
	Native
)

// Spec describes where/how to load a module, produced by a Locator and
// consumed by the matching Loader (spec §4.13 step 2).
type Spec struct {
	Name string
	Kind Kind

	// Path is the builtin registry key for Kind == Builtin, or a
	// filesystem path for Source/Native.
	Path string

	// ABIConstraint is an optional semver constraint string a
	// source/native module declares against the host's ABI version
	// (spec §4.13's version-aware loader chain, supplemented via
	// github.com/Masterminds/semver/v3 — see abi.go).
	ABIConstraint string
}

// Locator turns a module name into a Spec, or reports it cannot resolve
// this name so the next locator in the chain gets a turn.
type Locator func(name string) (*Spec, bool)

// Loader materializes a Module from a Spec already matched to this
// loader's Kind.
type Loader func(spec *Spec) (*Module, error)
