//go:build !((linux || darwin) && cgo)

package importer

import "fmt"

// NativeLoader is unavailable on this platform/build: Go's plugin
// package only supports linux/darwin with cgo enabled.
func NativeLoader(spec *Spec) (*Module, error) {
	return nil, fmt.Errorf("native module loading unsupported on this platform: %s", spec.Path)
}
