//go:build !windows && !darwin

package importer

const nativeExt = ".so"
