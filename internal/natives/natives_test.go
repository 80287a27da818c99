package natives

import "testing"

func TestLibraryFileName(t *testing.T) {
	name := LibraryFileName("mylib")
	suffix := LibrarySuffix()
	if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
		t.Fatalf("LibraryFileName(%q) = %q, want suffix %q", "mylib", name, suffix)
	}
}

func TestPluginResolverImplementsResolver(t *testing.T) {
	var _ Resolver = NewPluginResolver()
}
