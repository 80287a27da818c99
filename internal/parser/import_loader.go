package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// importCacheFile is the per-project manifest SPEC §12 describes: a flat
// "import path" -> "last resolved absolute path" cache, read with gjson
// and patched in place with sjson so repeated `buzzc` runs over the same
// project skip re-probing BUZZ_PATH/manifest search paths for an import
// that resolved the same way last time.
const importCacheFile = ".buzz-import-cache.json"

// buzzManifest is the optional project manifest (`buzz.yaml`): extra
// import search paths checked before BUZZ_PATH (SPEC §13 precedence
// note).
type buzzManifest struct {
	SearchPaths []string `yaml:"search_paths"`
}

func manifestSearchPaths() []string {
	data, err := os.ReadFile("buzz.yaml")
	if err != nil {
		return nil
	}
	var m buzzManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m.SearchPaths
}

func cachedImportPath(path string) (string, bool) {
	data, err := os.ReadFile(importCacheFile)
	if err != nil {
		return "", false
	}
	result := gjson.GetBytes(data, gjson.Escape(path))
	if !result.Exists() {
		return "", false
	}
	if _, err := os.Stat(result.String()); err != nil {
		return "", false // cache entry stale, file moved or removed
	}
	return result.String(), true
}

func cacheImportPath(path, resolved string) {
	data, _ := os.ReadFile(importCacheFile)
	updated, err := sjson.SetBytes(data, gjson.Escape(path), resolved)
	if err != nil {
		return
	}
	_ = os.WriteFile(importCacheFile, updated, 0o644)
}

// resolveImportPath implements spec §4.5 "import"'s path resolution,
// extended per SPEC §13's precedence note: a cached resolution first,
// then `buzz.yaml`'s search_paths, then BUZZ_PATH, then a path relative
// to the importing file itself.
func (p *Parser) resolveImportPath(path string) (string, error) {
	if resolved, ok := cachedImportPath(path); ok {
		return resolved, nil
	}

	candidate := path + ".buzz"

	for _, dir := range manifestSearchPaths() {
		full := filepath.Join(dir, candidate)
		if _, err := os.Stat(full); err == nil {
			cacheImportPath(path, full)
			return full, nil
		}
	}

	if base := os.Getenv("BUZZ_PATH"); base != "" {
		full := filepath.Join(base, candidate)
		if _, err := os.Stat(full); err == nil {
			cacheImportPath(path, full)
			return full, nil
		}
	}

	dir := filepath.Dir(p.fileName)
	full := filepath.Join(dir, candidate)
	if _, err := os.Stat(full); err == nil {
		cacheImportPath(path, full)
		return full, nil
	}

	return "", fmt.Errorf("cannot find import %q (looked for %s)", path, full)
}

// loadImport implements spec §4.5 "import": resolve the unit's file,
// parse it with this parser's registry and symbol table (so its globals
// land on the same shared, stable-indexed list, spec §3 invariant 2),
// then fold its exported globals into the importer's visibility under
// prefix/symbolsList. A cycle (the imported file is already being parsed
// higher up the import stack) is reported rather than recursing forever.
func (p *Parser) loadImport(path, prefix string, symbolsList []string) error {
	full, err := p.resolveImportPath(path)
	if err != nil {
		return err
	}

	if p.symbols.BeginImport(full) {
		return fmt.Errorf("import cycle detected at %q", path)
	}
	defer p.symbols.EndImport(full)

	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("cannot read import %q: %w", path, err)
	}

	before := len(p.symbols.Globals())
	_, errs := Parse(lexer.New(string(data)), full, true, p.registry, p.symbols)
	for _, e := range errs {
		p.errors = append(p.errors, e)
		p.hadError = true
	}

	return p.mergeImportedGlobals(before, prefix, symbolsList)
}

// mergeImportedGlobals implements spec §4.5's import visibility rules:
// every new global gets the import's prefix; a global the imported unit
// never exported stays hidden from the importer; a selective symbol list
// additionally hides exported globals it doesn't name, and names not
// found among the exports are reported.
func (p *Parser) mergeImportedGlobals(before int, prefix string, symbolsList []string) error {
	globals := p.symbols.Globals()

	var wanted map[string]bool
	if symbolsList != nil {
		wanted = make(map[string]bool, len(symbolsList))
		for _, s := range symbolsList {
			wanted[s] = false
		}
	}

	for i := before; i < len(globals); i++ {
		g := globals[i]
		g.Prefix = prefix
		if !g.Exported {
			g.Hidden = true
			continue
		}
		visible := g.VisibleName()
		if wanted != nil {
			if _, ok := wanted[visible]; !ok {
				g.Hidden = true
				continue
			}
			wanted[visible] = true
		}
	}

	if wanted != nil {
		for name, found := range wanted {
			if !found {
				return fmt.Errorf("import list names unknown or unexported symbol %q", name)
			}
		}
	}

	for i := before; i < len(globals); i++ {
		g := globals[i]
		if g.Hidden {
			continue
		}
		for j := 0; j < i; j++ {
			other := globals[j]
			if other.Hidden {
				continue
			}
			if other.Prefix == g.Prefix && other.VisibleName() == g.VisibleName() {
				return fmt.Errorf("import of %q collides with an existing name %q", g.VisibleName(), other.VisibleName())
			}
		}
	}

	return nil
}
