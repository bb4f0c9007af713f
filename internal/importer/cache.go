package importer

import (
	"sync"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"golang.org/x/sync/singleflight"
)

// sentinel marks a cache slot as "currently loading" (spec §4.13 "insert
// the sentinel into the cache"): a value distinct from both "absent" (no
// map entry) and "loaded" (a *Module entry), so a re-entrant Import of
// the same name mid-load is unambiguously a cyclic import rather than a
// cache miss.
type sentinel struct{}

// Importer holds the module cache, locator chain, and per-Kind loaders
// (spec §4.13's Import object: "module cache ... list of loader
// functions, list of locator functions, search path list ... and a
// mutex").
type Importer struct {
	mu    sync.Mutex
	cache map[string]any // *Module, sentinel, or absent

	locators []Locator
	loaders  map[Kind]Loader

	group singleflight.Group
}

// New builds an empty Importer. Register locators/loaders with
// AddLocator/SetLoader before the first Import call.
func New() *Importer {
	return &Importer{
		cache:   make(map[string]any),
		loaders: make(map[Kind]Loader),
	}
}

// AddLocator appends a locator to the chain, tried in registration order
// (spec §4.13 "locators run built-ins first, then filesystem search").
func (im *Importer) AddLocator(l Locator) {
	im.locators = append(im.locators, l)
}

// SetLoader registers the loader for a Kind of Spec.
func (im *Importer) SetLoader(k Kind, l Loader) {
	im.loaders[k] = l
}

// Import resolves name to a Module, following spec §4.13's four-step
// algorithm. Concurrent Import calls for the same name that haven't
// reached the cache yet are coalesced by singleflight so only one
// locator/loader invocation actually runs.
func (im *Importer) Import(name string) (*Module, error) {
	if m, err, ok := im.lookupCache(name); ok {
		return m, err
	}

	v, err, _ := im.group.Do(name, func() (interface{}, error) {
		return im.resolve(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Module), nil
}

// lookupCache implements spec §4.13 step 1 under the import lock: a
// loaded entry is returned directly (ok=true, err=nil); an in-flight
// sentinel is reported as a cyclic import (ok=true, err set); an absent
// entry falls through to the locator/loader chain (ok=false).
func (im *Importer) lookupCache(name string) (*Module, error, bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	switch v := im.cache[name].(type) {
	case *Module:
		return v, nil, true
	case sentinel:
		return nil, zerrors.CyclicImport(name), true
	default:
		return nil, nil, false
	}
}

// resolve runs locator/loader/cache-insert step of spec §4.13 steps 2-4.
func (im *Importer) resolve(name string) (*Module, error) {
	if m, err, ok := im.lookupCache(name); ok {
		return m, err
	}

	spec, found := im.locate(name)
	if !found {
		return nil, zerrors.ModuleImport(name, "no locator resolved this module")
	}

	loader, ok := im.loaders[spec.Kind]
	if !ok {
		return nil, zerrors.ModuleImport(name, "no loader registered for this module kind")
	}

	im.mu.Lock()
	im.cache[name] = sentinel{}
	im.mu.Unlock()

	module, err := loader(spec)

	im.mu.Lock()
	defer im.mu.Unlock()
	if err != nil {
		delete(im.cache, name)
		return nil, zerrors.ModuleImport(name, err.Error())
	}
	im.cache[name] = module
	return module, nil
}

func (im *Importer) locate(name string) (*Spec, bool) {
	for _, l := range im.locators {
		if spec, ok := l(name); ok {
			return spec, true
		}
	}
	return nil, false
}

// Invalidate drops a cached, fully-loaded module so the next Import
// re-resolves it from scratch (used by the filesystem watch in watch.go
// when a source file changes on disk).
func (im *Importer) Invalidate(name string) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, ok := im.cache[name].(*Module); ok {
		delete(im.cache, name)
	}
}
