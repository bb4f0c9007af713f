package interp

import "github.com/zephyr-lang/zephyr/internal/object"

// ImportModule resolves a module name to its loaded Object (spec §4.13),
// plugged in by cmd/zephyr at process startup. internal/interp cannot
// import internal/importer directly — importer's source loader already
// depends on interp to run a module's top-level code, so a direct
// import back would cycle — so this package-level hook is the seam
// that lets OpIMPFRM/OpIMPMOD reach the real import subsystem without
// either package depending on the other.
var ImportModule func(name string) (object.Object, error)
