//go:build windows

package importer

const nativeExt = ".dll"
