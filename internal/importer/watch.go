package importer

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates a source module's cache entry whenever its backing
// file changes on disk, so the next Import recompiles it instead of
// returning the stale cached Module (spec §4.13's loader chain never
// requires this; it is the optional hot-reload convenience the
// filesystem locator's search path makes possible). nameForPath maps a
// changed file back to the module name it was loaded under — callers
// that know their own dir-to-name convention supply it directly.
func Watch(im *Importer, dirs []string, nameForPath func(path string) (string, bool)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, err
		}
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if name, ok := nameForPath(filepath.Clean(ev.Name)); ok {
					im.Invalidate(name)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}

// NameForExtension builds a nameForPath function for FilesystemLocator's
// own naming convention: a module named "a/b" resolves to
// "<searchPath>/a/b<ext>", so the inverse strips the search path prefix
// and any of the recognized extensions.
func NameForExtension(searchPaths []string) func(path string) (string, bool) {
	exts := []string{archiveExt, compiledExt, nativeExt}
	return func(path string) (string, bool) {
		for _, dir := range searchPaths {
			rel, err := filepath.Rel(dir, path)
			if err != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			for _, ext := range exts {
				if strings.HasSuffix(rel, ext) {
					name := strings.TrimSuffix(rel, ext)
					return filepath.ToSlash(name), true
				}
			}
		}
		return "", false
	}
}
