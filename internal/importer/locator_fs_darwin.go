//go:build darwin

package importer

const nativeExt = ".dylib"
