//go:build linux || darwin

package natives

import (
	"fmt"
	"plugin"
)

// PluginResolver implements Resolver on top of the standard library's
// `plugin` package (dlopen/dlsym under the hood). Spec §12 notes this is
// the one collaborator with no ecosystem library in the example corpus
// to reach for — no repo in the pack uses cgo/dlopen or a
// purego-style FFI layer — so it is built directly on `plugin.Open`/
// `plugin.Lookup`, which only work on Linux and macOS.
type PluginResolver struct {
	// opened caches already-opened libraries by file name so repeated
	// `extern fun` symbols from the same library don't reopen it.
	opened map[string]*plugin.Plugin
}

// NewPluginResolver creates an empty PluginResolver.
func NewPluginResolver() *PluginResolver {
	return &PluginResolver{opened: make(map[string]*plugin.Plugin)}
}

// Resolve implements Resolver.
func (r *PluginResolver) Resolve(libName, symbol string) (Handle, error) {
	path := LibraryFileName(libName)

	p, ok := r.opened[path]
	if !ok {
		opened, err := plugin.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening native library %q: %w", path, err)
		}
		r.opened[path] = opened
		p = opened
	}

	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("looking up native symbol %q in %q: %w", symbol, path, err)
	}
	return sym, nil
}
