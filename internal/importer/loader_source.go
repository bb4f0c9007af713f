package importer

import (
	"fmt"
	"os"

	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/interp"
)

// Compile turns already-scanned/parsed/compiled bytecode bytes into a
// runnable Code object. The scanner/parser/compiler front end is out of
// scope here (spec.md treats it as an external collaborator); a caller
// wires in whatever produces bytecode.Code, whether that is a real
// front end or, for an already-assembled .arc archive, a deserializer.
type Compile func(path string, src []byte) (*bytecode.Code, error)

// SourceLoader evaluates a module's top-level code once and captures
// whatever it left in Globals as the module's exports — the same shape
// argon/vm/importer/import.cpp describes for its source loader
// ("compiles and evaluates").
func SourceLoader(compile Compile) Loader {
	return func(spec *Spec) (*Module, error) {
		if ok, err := CheckABI(spec.ABIConstraint, HostABI); err != nil {
			return nil, fmt.Errorf("invalid ABI constraint %q: %w", spec.ABIConstraint, err)
		} else if !ok {
			return nil, fmt.Errorf("%s requires ABI %s, host is %s", spec.Path, spec.ABIConstraint, HostABI)
		}

		src, err := os.ReadFile(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", spec.Path, err)
		}

		code, err := compile(spec.Path, src)
		if err != nil {
			return nil, fmt.Errorf("compiling %s: %w", spec.Path, err)
		}

		m := newModule(spec.Name)
		f := fiber.NewFiber(code.StackSize)
		fr := fiber.NewFrame(f, code, m.Exports, false)
		if rtErr := interp.RunFrame(f, fr); rtErr != nil {
			return nil, fmt.Errorf("evaluating %s: %s", spec.Path, rtErr.Error())
		}
		return m, nil
	}
}
