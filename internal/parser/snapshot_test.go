package parser

import (
	"testing"

	"github.com/UpperCi/buzz/internal/ast"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestASTSnapshot guards the JSON AST dump's shape (spec §6, the `buzz
// ast` CLI output) the same way the compiler's own golden-file tests
// guard codegen output: catch accidental shape drift in the Dump()
// contract across the whole node set in one diff.
func TestASTSnapshot(t *testing.T) {
	src := `
fun area(Shape s) > num {
	return s.width * s.height;
}

object Shape {
	num width,
	num height,
}

export area;

test "area of a unit square" {
	var Shape sq = Shape{ width = 1, height = 1 };
	if (area(sq) != 1) {
		throw "unexpected area";
	}
}
`
	program, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	b, err := ast.DumpJSON(program, true)
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	snaps.MatchSnapshot(t, "area_ast", string(b))
}
