//go:build windows

package natives

import "fmt"

// PluginResolver on Windows: the standard library's `plugin` package is
// Linux/macOS only, and no repo in the pack carries a Windows DLL-loading
// dependency to fall back to (spec §12), so this platform reports an
// explicit error rather than silently no-op'ing.
type PluginResolver struct{}

// NewPluginResolver creates a PluginResolver.
func NewPluginResolver() *PluginResolver { return &PluginResolver{} }

// Resolve implements Resolver.
func (r *PluginResolver) Resolve(libName, symbol string) (Handle, error) {
	return nil, fmt.Errorf("native library loading (%q) is not supported on windows", LibraryFileName(libName))
}
