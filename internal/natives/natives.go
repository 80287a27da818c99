// Package natives implements the symbol resolver collaborator spec §6
// describes for `extern fun`: given a shared-library path and a symbol
// name, return a native function handle. The front end only needs the
// collaborator's shape (this is "out of scope (external collaborators,
// interfaces only)" per spec §1) — an `extern fun` declaration parses
// and type-checks against a Native TypeDef (internal/types) without ever
// calling Resolve itself; a downstream byte-code emitter looks the
// symbol up at link time through this package instead.
package natives

import "runtime"

// Handle is an opaque native function handle: whatever Resolve's
// platform-specific lookup produced, typed as `any` because the emitter
// (out of scope here) is the only consumer that knows what to do with
// it (e.g. type-assert to a func value matching the Native TypeDef's
// Signature).
type Handle any

// Resolver is the collaborator spec §6 names: "resolve(lib_name, symbol)
// -> native handle | error". internal/parser never depends on this
// interface directly — it is wired in by whatever host program drives
// `extern fun` linking after this front end hands it a resolved AST.
type Resolver interface {
	Resolve(libName, symbol string) (Handle, error)
}

// LibrarySuffix is the OS-appropriate shared-library file extension
// (spec §6 "Environment"): ".so" on Linux/BSD, ".dylib" on Apple,
// ".dll" on Windows.
func LibrarySuffix() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// LibraryFileName appends the platform suffix to libName, the way
// `extern fun`'s resolution (spec §4.5) names the shared library after
// the current script.
func LibraryFileName(libName string) string {
	return libName + LibrarySuffix()
}
