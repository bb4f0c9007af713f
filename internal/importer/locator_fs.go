package importer

import (
	"os"
	"path/filepath"
)

// archiveExt and compiledExt are the bytecode archive extensions spec
// §4.13 names for a source module ("trying extensions .ar, .arc, then
// the native shared-library extension"); nativeExt is platform-dependent
// and set in locator_fs_*.go.
const (
	archiveExt  = ".ar"
	compiledExt = ".arc"
)

// FilesystemLocator searches paths in order for name with each
// candidate extension, trying source/compiled archives before the
// native shared-library extension (spec §4.13: "the last extension
// signals native-library loading").
func FilesystemLocator(paths []string) Locator {
	exts := []struct {
		ext  string
		kind Kind
	}{
		{archiveExt, Source},
		{compiledExt, Source},
		{nativeExt, Native},
	}

	return func(name string) (*Spec, bool) {
		rel := filepath.FromSlash(name)
		for _, dir := range paths {
			for _, e := range exts {
				candidate := filepath.Join(dir, rel+e.ext)
				if fileExists(candidate) {
					return &Spec{Name: name, Kind: e.kind, Path: candidate}, true
				}
			}
		}
		return nil, false
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
